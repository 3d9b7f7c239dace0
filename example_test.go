package docgen_test

import (
	"context"
	"errors"
	"fmt"

	docgen "github.com/alnah/go-docgen"
)

// memorySource serves templates from a map.
type memorySource map[string]string

func (m memorySource) ReadTemplate(name string) (string, error) {
	text, ok := m[name]
	if !ok {
		return "", fmt.Errorf("no template %q", name)
	}
	return text, nil
}

func exampleGenerator() *docgen.Generator {
	catalog, err := docgen.NewCatalog([]docgen.TemplateDefinition{{
		ID:             "invoice",
		Name:           "Invoice",
		DefaultVersion: "v2",
		Versions: []docgen.TemplateVersion{
			{Version: "v1", FileName: "invoice-v1.html.tmpl", DefaultOutputName: "invoice-v1"},
			{Version: "v2", FileName: "invoice-v2.html.tmpl", DefaultOutputName: "invoice-v2"},
		},
	}})
	if err != nil {
		panic(err)
	}

	cache := docgen.NewTemplateCache(catalog, memorySource{
		"invoice-v1.html.tmpl": `<p>Invoice for {{.customer.name}}</p>`,
		"invoice-v2.html.tmpl": `<p>Invoice {{.number}} for {{upper .customer.name}}</p>`,
	})
	if err := cache.PreloadAll(context.Background()); err != nil {
		panic(err)
	}

	// HTML only: no PDF engine needed.
	return docgen.NewGenerator(cache, docgen.NewRenderer(), nil)
}

// Example renders the default version of a template to HTML.
func Example() {
	gen := exampleGenerator()

	doc, err := gen.Generate(context.Background(), docgen.Request{
		TemplateID: "invoice",
		Data: map[string]any{
			"number":   42,
			"customer": map[string]any{"name": "Acme"},
		},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(doc.FileName)
	fmt.Println(string(doc.Content))
	// Output:
	// invoice-v2.html
	// <p>Invoice 42 for ACME</p>
}

// Example_missingData shows the strict rendering failure for an absent value.
func Example_missingData() {
	gen := exampleGenerator()

	_, err := gen.Generate(context.Background(), docgen.Request{
		TemplateID: "invoice",
		Version:    "v1",
		Data:       map[string]any{"customer": map[string]any{}},
	})

	var rerr *docgen.RenderError
	if errors.As(err, &rerr) {
		fmt.Println(docgen.KindOf(err), rerr.Path)
	}
	// Output: RenderFailed customer.name
}

// ExampleKindOf maps an unknown template id to its error kind.
func ExampleKindOf() {
	gen := exampleGenerator()

	_, err := gen.Generate(context.Background(), docgen.Request{
		TemplateID: "receipt",
		Data:       map[string]any{"a": 1},
	})

	fmt.Println(docgen.KindOf(err), docgen.KindOf(err).IsCallerError())
	fmt.Println(err)
	// Output:
	// TemplateNotFound true
	// Unknown template id "receipt". Available templates: invoice
}
