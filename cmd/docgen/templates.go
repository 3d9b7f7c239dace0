package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"go.uber.org/zap"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/yamlutil"
)

// runTemplates prints the catalog as a table, or as YAML with --yaml.
func runTemplates(args []string, env *Environment) error {
	fs := newFlagSet("templates", env.Stderr)
	asYAML := fs.Bool("yaml", false, "print the catalog as YAML")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := loadConfig(fs, env)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, zap.NewNop())
	if err != nil {
		return err
	}

	if *asYAML {
		out, err := yamlutil.Encode(a.catalog.List())
		if err != nil {
			return err
		}
		_, err = env.Stdout.Write(out)
		return err
	}
	return printCatalog(env.Stdout, a.catalog.List())
}

func printCatalog(w io.Writer, defs []docgen.TemplateDefinition) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVERSION\tDEFAULT\tDESCRIPTION")
	for _, d := range defs {
		for _, v := range d.Versions {
			def := ""
			if v.Version == d.DefaultVersion {
				def = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, v.Version, def, v.Description)
		}
	}
	return tw.Flush()
}
