package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for pipeline observability spans and metrics.
var (
	AttrEmbedModel      = attribute.Key("embed.model")
	AttrEmbedProvider   = attribute.Key("embed.provider")
	AttrEmbedTextCount  = attribute.Key("embed.text_count")
	AttrEmbedDimensions = attribute.Key("embed.dimensions")

	AttrStoreOp     = attribute.Key("store.op")
	AttrSourceType  = attribute.Key("store.source_type")
	AttrChunkCount  = attribute.Key("store.chunk_count")
	AttrSearchK     = attribute.Key("store.search.k")
	AttrResultCount = attribute.Key("store.result_count")
)
