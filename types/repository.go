package types

// CloneRequest is the body of the clone-and-upload route.
type CloneRequest struct {
	RepoURL    string `json:"repoUrl"`
	BucketName string `json:"bucketName,omitempty"`
}

// AnalyzeRequest is the body of the analyze-and-store route.
type AnalyzeRequest struct {
	BucketName string `json:"bucketName"`
	RepoPath   string `json:"repoPath"`
}

// MessageResponse is returned on success.
type MessageResponse struct {
	Message string `json:"message"`
	Files   int    `json:"files,omitempty"`
}

// ErrorResponse is returned on any failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadResult is the outcome of uploading one workspace file.
type UploadResult struct {
	Path string
	Key  string
	Err  error
}

// SourceFile is one stored object that was included in an analysis prompt.
type SourceFile struct {
	Key      string
	Size     int
	Language string
}
