// Command apicompat fails when the current API docs drop a path, operation or
// response code present in a baseline swagger document.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"socialnet/docs"

	"gopkg.in/yaml.v3"
)

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"patch": true, "head": true, "options": true,
}

// surface maps path -> method -> response codes.
type surface map[string]map[string]map[string]bool

type swaggerDoc struct {
	Paths map[string]map[string]struct {
		Responses map[string]yaml.Node `yaml:"responses"`
	} `yaml:"paths"`
}

func main() {
	basePath := flag.String("base", "", "baseline swagger document (JSON or YAML)")
	revisionPath := flag.String("revision", "", "revised swagger document; defaults to the compiled docs package")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: apicompat -base <path> [-revision <path>]")
		os.Exit(2)
	}

	base, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base document: %v\n", err)
		os.Exit(1)
	}

	var revision surface
	if *revisionPath == "" {
		revision, err = parse([]byte(docs.SwaggerInfo.ReadDoc()))
	} else {
		revision, err = loadFile(*revisionPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision document: %v\n", err)
		os.Exit(1)
	}

	if issues := compare(base, revision); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}
	fmt.Println("api compatibility check passed")
}

func loadFile(path string) (surface, error) {
	raw, err := os.ReadFile(path) // #nosec G304: CLI-supplied path
	if err != nil {
		return nil, err
	}
	return parse(raw)
}

// parse accepts JSON as well as YAML since JSON is a YAML subset.
func parse(raw []byte) (surface, error) {
	var doc swaggerDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, fmt.Errorf("missing top-level paths field")
	}

	out := surface{}
	for path, ops := range doc.Paths {
		for method, op := range ops {
			method = strings.ToLower(strings.TrimSpace(method))
			if !httpMethods[method] {
				continue
			}
			codes := map[string]bool{}
			for code := range op.Responses {
				codes[strings.ToLower(strings.TrimSpace(code))] = true
			}
			if out[path] == nil {
				out[path] = map[string]map[string]bool{}
			}
			out[path][method] = codes
		}
	}
	return out, nil
}

func compare(base, revision surface) []string {
	var issues []string
	for path, baseOps := range base {
		revOps, ok := revision[path]
		if !ok {
			issues = append(issues, "removed path: "+path)
			continue
		}
		for method, codes := range baseOps {
			revCodes, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range codes {
				if !revCodes[code] {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}
	sort.Strings(issues)
	return issues
}
