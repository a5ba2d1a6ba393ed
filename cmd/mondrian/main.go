package main

import (
        "os"
        "strings"

        "mondrian-cli/internal/cli"
)

func isPagePath(s string) bool {
        s = strings.TrimSpace(s)
        return strings.HasPrefix(s, "/") && len(strings.Trim(s, "/")) > 0
}

func rewritePagePathArgs(argv []string) []string {
        // Convenience: `mondrian /<page>` works like `mondrian open <page>`, mirroring
        // the page's route on the web.
        //
        // Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
        // Persistent flags may come first (e.g. `mondrian --api ... /home`), so we look for the
        // first positional token, not just argv[1].
        if len(argv) < 2 {
                return argv
        }

        valueFlags := map[string]bool{
                "--api":      true,
                "--config":   true,
                "--format":   true,
                "--log-file": true,
                "--timeout":  true,
        }
        boolFlags := map[string]bool{
                "--pretty": true,
                "--debug":  true,
        }

        rewrite := func(i int) []string {
                out := make([]string, 0, len(argv)+1)
                out = append(out, argv[:i]...)
                out = append(out, "open", strings.Trim(strings.TrimSpace(argv[i]), "/"))
                out = append(out, argv[i+1:]...)
                return out
        }

        for i := 1; i < len(argv); i++ {
                a := strings.TrimSpace(argv[i])
                if a == "" {
                        continue
                }
                if a == "--" {
                        // Cobra hands everything after -- to the root command, so the
                        // subcommand has to come first.
                        if i+1 < len(argv) && isPagePath(argv[i+1]) {
                                out := make([]string, 0, len(argv)+1)
                                out = append(out, argv[:i]...)
                                out = append(out, "open", "--", strings.Trim(strings.TrimSpace(argv[i+1]), "/"))
                                return append(out, argv[i+2:]...)
                        }
                        return argv
                }
                if strings.HasPrefix(a, "-") {
                        if strings.Contains(a, "=") || boolFlags[a] {
                                continue
                        }
                        if valueFlags[a] {
                                i++
                        }
                        continue
                }
                if isPagePath(a) {
                        return rewrite(i)
                }
                return argv
        }
        return argv
}

func main() {
        os.Args = rewritePagePathArgs(os.Args)

        cmd := cli.NewRootCmd()
        if err := cmd.Execute(); err != nil {
                os.Exit(1)
        }
}
