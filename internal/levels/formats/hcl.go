package formats

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

func init() {
	Parsers.Register(".hcl", ParseHCL)
}

// ParseHCL parses an HCL level file. Nodes, edges, branches, hazards and
// worms are labelled blocks:
//
//	node "J" {
//	  kind = "junction"
//	  x    = 40
//	}
func ParseHCL(data []byte, filename string) (Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return Document{}, fmt.Errorf("hcl parse: %s", diags.Error())
	}

	var doc Document
	diags = gohcl.DecodeBody(file.Body, nil, &doc)
	if diags.HasErrors() {
		return Document{}, fmt.Errorf("hcl decode: %s", diags.Error())
	}
	return doc, nil
}
