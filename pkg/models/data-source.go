package models

const (
	DataSourceEmbedded    = "embedded"
	DataSourceFilename    = "filename"
	DataSourceOpenLibrary = "openlibrary"
	DataSourceGoogleBooks = "googlebooks"
)

