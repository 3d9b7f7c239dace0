package main

import (
	"fmt"
	"io"
)

const usageText = `Usage: docgen [command] [flags]

Commands:
  serve       Run the HTTP API (default)
  render      Generate one document to a file
  templates   List the template catalog
  doctor      Check the browser and template setup
  version     Print the version
  help        Show this help

Common flags:
  --config FILE          YAML configuration file
  --templates-dir DIR    custom template directory (env TEMPLATES_DIR)
  --catalog FILE         catalog YAML (env TEMPLATES_CATALOG)
  --log-level LEVEL      debug, info, warn, error (env LOG_LEVEL)
  --log-format FORMAT    console or json (env LOG_FORMAT)

Serve flags:
  --addr ADDR            listen address (env SERVER_ADDR, default :3000)
  --watch                reload templates when files change (env TEMPLATES_WATCH)
  --pdf-timeout-ms N     PDF conversion timeout (env PDF_TIMEOUT_MS)
  --pdf-max-pages N      concurrent PDF pages, 0 = auto (env PDF_MAX_PAGES)
  --browser-bin PATH     Chrome binary (env ROD_BROWSER_BIN)
  --no-sandbox           disable the Chrome sandbox (env PDF_NO_SANDBOX)

Render flags:
  -t, --template ID      template id (required)
  -V, --version V        template version (default: the template's default)
  -f, --format FORMAT    html or pdf (default html)
  -d, --data FILE        JSON or YAML data file, "-" for stdin (required)
  -o, --output FILE      output path, "-" for stdout (default: catalog file name)

Exit codes:
  0 success, 1 general, 2 usage, 3 I/O, 4 browser, 5 template preload
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}
