// Package docgen generates documents from versioned templates, as HTML or
// PDF rendered by headless Chrome.
//
// # Quick Start
//
// Build the catalog, cache, renderer and PDF engine, then generate:
//
//	source, err := assets.NewResolver("")   // built-in templates
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache := docgen.NewTemplateCache(docgen.DefaultCatalog(), source)
//	if err := cache.PreloadAll(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	engine := docgen.NewEngine(docgen.WithTimeout(30 * time.Second))
//	if err := engine.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Shutdown()
//
//	gen := docgen.NewGenerator(cache, docgen.NewRenderer(), engine)
//	doc, err := gen.Generate(ctx, docgen.Request{
//	    TemplateID: "nda",
//	    Format:     docgen.FormatPDF,
//	    Data:       data,
//	})
//
// doc.FileName is the version's default output name plus the format
// extension ("nda-v1.pdf"). GenerateStream returns the same bytes as a
// reader.
//
// # Generation Pipeline
//
//  1. Resolve (id, version) through the TemplateCache; an empty version
//     selects the catalog default
//  2. Render the template text against the data tree (html/template, strict)
//  3. For PDF, print the HTML in an isolated Chrome page (go-rod)
//  4. Package content with MIME type and file name
//
// # Strict Rendering
//
// Templates address data with dotted paths ({{.client.address.city}}).
// Referencing an absent key, or a key whose value is null, fails the render
// with a *RenderError naming the path. Helpers lookup, optional, has, upper,
// lower, title, join, formatDate and markdown are available in every template.
//
// # Errors
//
// Every failure maps to a Kind through KindOf. Caller errors
// (unknown template, unknown version, invalid format) report true from
// Kind.IsCallerError; *NotFoundError lists the identifiers that exist.
//
// # Concurrency
//
// TemplateCache, Renderer, Engine and Generator are safe for concurrent
// use. The Engine bounds concurrent pages with ResolvePoolSize and gives
// each conversion its own incognito browser context.
package docgen
