package storage

import (
	"path"
	"strings"
)

// Attachment kinds drive which viewer the console opens and whether a
// thumbnail is fetched eagerly.
const (
	KindImage    = "image"
	KindAudio    = "audio"
	KindVideo    = "video"
	KindDocument = "document"
	KindFile     = "file"
)

var kindByExt = map[string]string{
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".gif":  KindImage,
	".webp": KindImage,
	".bmp":  KindImage,
	".heic": KindImage,
	".mp3":  KindAudio,
	".wav":  KindAudio,
	".m4a":  KindAudio,
	".aac":  KindAudio,
	".ogg":  KindAudio,
	".mp4":  KindVideo,
	".mov":  KindVideo,
	".avi":  KindVideo,
	".mkv":  KindVideo,
	".webm": KindVideo,
	".pdf":  KindDocument,
	".doc":  KindDocument,
	".docx": KindDocument,
	".txt":  KindDocument,
	".rtf":  KindDocument,
	".xls":  KindDocument,
	".xlsx": KindDocument,
}

// Classify maps a stored object path to an attachment kind by extension,
// case-insensitively. Anything unrecognized is a generic file.
func Classify(objectPath string) string {
	ext := strings.ToLower(path.Ext(objectPath))
	if kind, ok := kindByExt[ext]; ok {
		return kind
	}
	return KindFile
}

// FileName extracts the display name from a stored object path or URL.
func FileName(objectPath string) string {
	name := path.Base(strings.TrimSuffix(objectPath, "/"))
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	if name == "." || name == "/" {
		return objectPath
	}
	return name
}
