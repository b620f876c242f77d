// Package engine is the license plugin core. A build driver calls
// OnModuleLoad for every module, OnChunkRender for every emitted chunk and
// OnBundleGenerate once at the end. This package is internal; external
// consumers should use the facade in pkg/core.
package engine
