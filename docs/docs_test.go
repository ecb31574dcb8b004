package docs

import (
	"strings"
	"testing"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("swagger info not initialized")
	}
	if SwaggerInfo.Title == "" {
		t.Fatal("swagger info missing title")
	}
}

func TestSwaggerDocListsOracleRoutes(t *testing.T) {
	doc := SwaggerInfo.ReadDoc()
	for _, route := range []string{"/oracle-refprice/{symbol}", "/oracle-dex/{chain}/{pairAddress}", "/arbitrage-scanner"} {
		if !strings.Contains(doc, route) {
			t.Fatalf("swagger doc missing %s", route)
		}
	}
}
