package codex

// --- Domain types (database records) ---

// Chunk is the atomic retrievable unit: a bounded slice of document text
// with provenance and, once embedded, a fixed-length vector.
type Chunk struct {
	// ID is assigned by the store on insert. It identifies a row and
	// carries no ordering semantics.
	ID           int64     `json:"id"`
	DocumentName string    `json:"document_name"`
	Page         int       `json:"page"`
	Text         string    `json:"text"`
	SourceType   string    `json:"source_type"`
	SectionName  string    `json:"section_name,omitempty"`
	URL          string    `json:"url,omitempty"`
	IsOverlap    bool      `json:"is_overlap"`
	Embedding    []float32 `json:"-"`
}

// ScoredChunk pairs a chunk with its similarity score from a nearest
// neighbor search. Score is cosine similarity; higher means closer.
type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// SourceDocument is one fetched document: raw text split into 1-indexed
// pages, plus the provenance inherited by every chunk cut from it.
// Immutable once fetched; it lives only for the duration of an ingestion run.
type SourceDocument struct {
	Name        string
	SectionName string
	URL         string
	Pages       []Page
}

// Page holds the raw text of one page or section of a source document.
type Page struct {
	Number int
	Text   string
}
