package commonModels

// Metadata is the fixed key set every reader produces. Strings default to "" and
// counts to 0, so a serialized record always carries every key.
type Metadata struct {
	Filename       string       `json:"filename"`
	FileExtension  string       `json:"file_extension"`
	FilePath       string       `json:"file_path"`
	FileSize       int64        `json:"file_size"`
	LastModified   string       `json:"last_modified"`
	Title          string       `json:"title"`
	Author         string       `json:"author"`
	Created        string       `json:"created"`
	Modified       string       `json:"modified"`
	LastModifiedBy string       `json:"last_modified_by"`
	Revision       string       `json:"revision"`
	Category       string       `json:"category"`
	Comments       string       `json:"comments"`
	Subject        string       `json:"subject"`
	Keywords       string       `json:"keywords"`
	ParagraphCount int          `json:"paragraph_count"`
	TableCount     int          `json:"table_count"`
	SectionCount   int          `json:"section_count"`
	DocumentType   DocumentType `json:"document_type"`
}

// DocumentPayload is the result of reading one source file.
type DocumentPayload struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// AsMap renders the metadata with its wire keys, for vector store payloads.
func (m Metadata) AsMap() map[string]any {
	return map[string]any{
		"filename":         m.Filename,
		"file_extension":   m.FileExtension,
		"file_path":        m.FilePath,
		"file_size":        m.FileSize,
		"last_modified":    m.LastModified,
		"title":            m.Title,
		"author":           m.Author,
		"created":          m.Created,
		"modified":         m.Modified,
		"last_modified_by": m.LastModifiedBy,
		"revision":         m.Revision,
		"category":         m.Category,
		"comments":         m.Comments,
		"subject":          m.Subject,
		"keywords":         m.Keywords,
		"paragraph_count":  m.ParagraphCount,
		"table_count":      m.TableCount,
		"section_count":    m.SectionCount,
		"document_type":    string(m.DocumentType),
	}
}
