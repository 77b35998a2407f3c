package example

import "github.com/jhump/attrdef"
import "github.com/jhump/attrdef/parser"

var serverHostField = attrdef.NewDef("server", "host", true, attrdef.NoDefault(attrdef.Str))

var serverPortField = attrdef.NewDef("server", "port", false, attrdef.Int32Default(8080))

var serverDebugField = attrdef.NewDef("server", "debug", false, attrdef.FlagDefault())

var serverRatioField = attrdef.NewDef("server", "ratio", false, attrdef.NoDefault(attrdef.F32))

var serverSepField = attrdef.NewDef("server", "separator", false, attrdef.CharDefault(','))

var serverFieldDefs = attrdef.NewDefs(serverHostField, serverPortField, serverDebugField, serverRatioField, serverSepField)

// ServerFromAttributes creates a Server from the server fields in the given attributes.
func ServerFromAttributes(attrs []*parser.Attribute) (*Server, error) {
	var v Server
	if err := serverHostField.ExtractValue(attrs, &v.Host); err != nil {
		return nil, err
	}
	if err := serverPortField.ExtractValue(attrs, &v.Port); err != nil {
		return nil, err
	}
	if err := serverDebugField.ExtractValue(attrs, &v.Debug); err != nil {
		return nil, err
	}
	if err := serverRatioField.ExtractValue(attrs, &v.Ratio); err != nil {
		return nil, err
	}
	if err := serverSepField.ExtractValue(attrs, &v.Sep); err != nil {
		return nil, err
	}
	return &v, nil
}

// ServerAttributeDefs returns the definitions of the server fields.
func ServerAttributeDefs() *attrdef.Defs {
	return serverFieldDefs
}

// StripServerAttributes returns the given attributes without the server fields.
func StripServerAttributes(attrs []*parser.Attribute) []*parser.Attribute {
	return serverFieldDefs.Strip(attrs)
}

var endpointPathField = attrdef.NewDef("route", "path", true, attrdef.NoDefault(attrdef.Str))

var endpointVerbField = attrdef.NewDef("route", "method", false, attrdef.StringDefault("GET"))

var endpointBodyField = attrdef.NewDef("route", "body", false, attrdef.NoDefault(attrdef.ByteStr))

var endpointFieldDefs = attrdef.NewDefs(endpointPathField, endpointVerbField, endpointBodyField)

// EndpointFromAttributes creates a Endpoint from the route fields in the given attributes.
func EndpointFromAttributes(attrs []*parser.Attribute) (*Endpoint, error) {
	var v Endpoint
	if err := endpointPathField.ExtractValue(attrs, &v.Path); err != nil {
		return nil, err
	}
	if err := endpointVerbField.ExtractValue(attrs, &v.Verb); err != nil {
		return nil, err
	}
	if err := endpointBodyField.ExtractValue(attrs, &v.Body); err != nil {
		return nil, err
	}
	return &v, nil
}

// EndpointAttributeDefs returns the definitions of the route fields.
func EndpointAttributeDefs() *attrdef.Defs {
	return endpointFieldDefs
}

// StripEndpointAttributes returns the given attributes without the route fields.
func StripEndpointAttributes(attrs []*parser.Attribute) []*parser.Attribute {
	return endpointFieldDefs.Strip(attrs)
}
