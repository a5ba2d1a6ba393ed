package format

import (
        "encoding/json"
        "fmt"
        "io"
        "strings"

        "gopkg.in/yaml.v3"
)

// Names lists the supported output formats, default first.
var Names = []string{"json", "yaml"}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - yaml
func Write(w io.Writer, v any, format string, pretty bool) error {
        switch strings.ToLower(strings.TrimSpace(format)) {
        case "", "json":
                return WriteJSON(w, v, pretty)
        case "yaml", "yml":
                return WriteYAML(w, v)
        default:
                return fmt.Errorf("unknown format: %s (want one of %s)", format, strings.Join(Names, ", "))
        }
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
        var b []byte
        var err error
        if pretty {
                b, err = json.MarshalIndent(v, "", "  ")
        } else {
                b, err = json.Marshal(v)
        }
        if err != nil {
                return err
        }

        _, err = fmt.Fprintln(w, string(b))
        return err
}

// WriteYAML writes v as YAML. Field names come from the yaml struct tags, so
// the wire-format "PageId"/"Boxes" keys read as pageId/boxes here.
func WriteYAML(w io.Writer, v any) error {
        enc := yaml.NewEncoder(w)
        enc.SetIndent(2)
        if err := enc.Encode(v); err != nil {
                return err
        }
        return enc.Close()
}
