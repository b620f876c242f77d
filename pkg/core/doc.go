// Package core provides a small, stable facade over the license engine for
// build tools written in Go. It re-exports a narrow API surface so that
// integrations depend on a stable import path without reaching into
// internal packages.
//
// Example:
//
//	p, err := core.New(core.Options{}, nil)
//	if err != nil { /* handle */ }
//	p.OnModuleLoad("/app/node_modules/lodash/lodash.js")
//	res, err := p.OnChunkRender(code, core.ChunkMeta{FileName: "main.js"}, core.OutputOptions{})
//	artifacts, err := p.OnBundleGenerate()
package core
