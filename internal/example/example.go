// Package example contains types from which attrgen derives field
// definitions. The generated code is in example.attrdef.go.
package example

//go:generate attrgen --type Server,Endpoint github.com/jhump/attrdef/internal/example

// Server configures a server. Its fields are given in an attribute like so:
//
//    @server(host = "localhost", port = 9090, debug)
//
// @attrdef()
type Server struct {
	Host string
	// @attrdef(default_value = 8080)
	Port  int32
	Debug *struct{}
	Ratio *float32
	// @attrdef(rename = "separator", default_value = ',')
	Sep rune
}

// Endpoint describes a route of a server.
//
// @attrdef(rename = "route")
type Endpoint struct {
	Path string
	// @attrdef(rename = "method", default_value = "GET")
	Verb string
	Body *[]byte
}
