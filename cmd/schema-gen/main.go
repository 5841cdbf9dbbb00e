/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package main generates a JSON schema for the GoCD pipeline documents
// cdpipelines writes. The schema enables IDE validation of hand-edited
// config-repo files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cowdogmoo/cdpipelines/config"
	"github.com/cowdogmoo/cdpipelines/gocd"
	"github.com/invopop/jsonschema"
)

var (
	output = flag.String("o", "schema/gocd-pipeline.json", "Output path for JSON schema")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            false,
		AllowAdditionalProperties: false,
	}

	// Type-level doc comments; field descriptions come from the reflector.
	if err := reflector.AddGoComments("github.com/cowdogmoo/cdpipelines", "./"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to extract type-level comments: %v\n", err)
	}

	schema := reflector.Reflect(&gocd.Document{})

	schema.ID = jsonschema.ID("https://cdpipelines.dev/schema/gocd-pipeline.json")
	schema.Title = "GoCD Pipeline Config"
	schema.Description = "Schema for GoCD YAML config-repo documents generated by cdpipelines"
	// schema.Version is the JSON Schema draft, so the document format
	// version goes in the extras.
	if schema.Extras == nil {
		schema.Extras = make(map[string]interface{})
	}
	schema.Extras["formatVersion"] = gocd.DefaultFormatVersion

	schema.Examples = []interface{}{
		map[string]interface{}{
			"format_version": gocd.DefaultFormatVersion,
			"pipelines": map[string]interface{}{
				"STAGE_edxapp_B": map[string]interface{}{
					"group": "edxapp",
					"materials": map[string]interface{}{
						"edx_platform": map[string]interface{}{
							"git":    "https://github.com/edx/edx-platform.git",
							"branch": "master",
						},
					},
					"stages": []interface{}{
						map[string]interface{}{
							"build_ami": map[string]interface{}{
								"jobs": map[string]interface{}{
									"build_ami_job": map[string]interface{}{
										"tasks": []interface{}{
											map[string]interface{}{
												"exec": map[string]interface{}{
													"command":   "/bin/bash",
													"arguments": []string{"-c", "ansible-playbook launch_instance.yml"},
												},
											},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	dir := filepath.Dir(*output)
	if err := os.MkdirAll(dir, config.DirPermReadWriteExec); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Append newline to satisfy end-of-file-fixer
	data = append(data, '\n')

	if err := os.WriteFile(*output, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	fmt.Printf("✓ Generated JSON schema: %s\n", *output)
	return nil
}
