// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package report

// ArtifactExtension returns the download file extension for an artifact.
func ArtifactExtension(name string) string {
	switch name {
	case ArtifactCSV:
		return ".csv"
	case ArtifactExcel:
		return ".xlsx"
	case ArtifactPPT:
		return ".pptx"
	case ArtifactWord:
		return ".docx"
	}
	return ".bin"
}

// ArtifactContentType returns the MIME type served for an artifact.
func ArtifactContentType(name string) string {
	switch name {
	case ArtifactCSV:
		return "text/csv"
	case ArtifactExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ArtifactPPT:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ArtifactWord:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}
