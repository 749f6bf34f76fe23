// Package index resolves CommonCrawl index identifiers into the shard files
// that make up each index.
//
// Three layers of remote metadata are handled here:
//
//   - collinfo.json: the list of published crawl indexes
//     ([List], [Newest], [Find])
//   - cc-index.paths.gz: the shard catalog for one index ([Resolver])
//   - cluster.idx: per-host pointers into the shard files ([ReadClusterIdx])
//
// # Usage
//
//	resolver := index.NewResolver(client, index.Options{})
//	catalog, err := resolver.Resolve(ctx, "CC-MAIN-2020-50")
//	// catalog.Shards is the ordered list of cdx shard descriptors
//
// A catalog that cannot be fetched, or that contains no shards, fails with
// [ErrCatalogUnavailable]. This is fatal to a run: shard counts drive both
// progress totals and worker distribution, so no partial catalog is accepted.
package index
