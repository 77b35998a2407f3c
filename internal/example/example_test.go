package example

import (
	"errors"
	"testing"

	"github.com/jhump/attrdef"
	"github.com/jhump/attrdef/parser"
)

func TestServerFromAttributes(t *testing.T) {
	attrs := parser.MustParse(`@server(host = "localhost", debug) @other`)
	s, err := attrdef.Load(attrs, ServerAttributeDefs(), ServerFromAttributes)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if s.Host != "localhost" {
		t.Errorf("wrong host: %q", s.Host)
	}
	if s.Port != 8080 {
		t.Errorf("wrong port: %d", s.Port)
	}
	if s.Debug == nil {
		t.Errorf("debug should be set")
	}
	if s.Ratio != nil {
		t.Errorf("ratio should not be set: %v", *s.Ratio)
	}
	if s.Sep != ',' {
		t.Errorf("wrong separator: %q", s.Sep)
	}

	s, err = attrdef.Load(parser.MustParse(`@server(host = "h", port = 9090, ratio = 0.5, separator = ';')`), ServerAttributeDefs(), ServerFromAttributes)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if s.Port != 9090 || s.Debug != nil || s.Ratio == nil || *s.Ratio != 0.5 || s.Sep != ';' {
		t.Errorf("wrong server: %+v", s)
	}
}

func TestServerFromAttributes_Errors(t *testing.T) {
	testCases := []struct {
		src      string
		expected error
	}{
		{`@server(port = 1)`, attrdef.ErrMissingRequired},
		{`@server(host = "h", bogus = 1)`, attrdef.ErrUnrecognizedField},
		{`@server(host = 1)`, attrdef.ErrKindMismatch},
		{`@server(host = "h", debug = true)`, attrdef.ErrUnexpectedValue},
		{`@server(host = "h", host = "i")`, attrdef.ErrDuplicateField},
		{`@server = "h"`, attrdef.ErrMalformedShape},
	}
	for _, tc := range testCases {
		_, err := attrdef.Load(parser.MustParse(tc.src), ServerAttributeDefs(), ServerFromAttributes)
		if !errors.Is(err, tc.expected) {
			t.Errorf("%s: expecting %v, got %v", tc.src, tc.expected, err)
		}
	}
}

func TestEndpointFromAttributes(t *testing.T) {
	e, err := EndpointFromAttributes(parser.MustParse(`@route(path = "/users", body = b"{}")`))
	if err != nil {
		t.Fatalf("failed to extract: %v", err)
	}
	if e.Path != "/users" || e.Verb != "GET" || e.Body == nil || string(*e.Body) != "{}" {
		t.Errorf("wrong endpoint: %+v", e)
	}
}

func TestStripAttributes(t *testing.T) {
	attrs := parser.MustParse(`@server(host = "h") @route(path = "/", other = 1) @keep`)
	attrs = StripServerAttributes(attrs)
	attrs = StripEndpointAttributes(attrs)
	if len(attrs) != 2 || attrs[0].String() != "@route(other = 1)" || attrs[1].String() != "@keep" {
		t.Errorf("wrong attributes after strip: %v", attrs)
	}
}
