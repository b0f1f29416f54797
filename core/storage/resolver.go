package storage

import (
	"context"
	"strings"

	"dispatch-console/core/utils"
)

// Resolver turns a stored object path into a URL a browser can fetch for a
// limited time.
type Resolver interface {
	SignedURL(ctx context.Context, objectPath string) (string, error)
}

// Attachment is the resolved view of one stored object.
type Attachment struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	URL   string `json:"url"`
}

// Service resolves report attachments against the configured backend.
type Service struct {
	resolver Resolver
	log      *utils.Logger
}

func NewService(resolver Resolver, log *utils.Logger) *Service {
	if log == nil {
		log = utils.NewLogger()
	}
	return &Service{resolver: resolver, log: log}
}

// Resolve builds the attachment view for a report. Signing failures fall
// back to the raw stored path so the console can still render the entry;
// already-absolute URLs pass through untouched.
func (s *Service) Resolve(ctx context.Context, paths []string) []Attachment {
	out := make([]Attachment, 0, len(paths))
	for i, p := range paths {
		a := Attachment{
			Index: i,
			Path:  p,
			Name:  FileName(p),
			Kind:  Classify(p),
			URL:   p,
		}
		if !isAbsoluteURL(p) && s.resolver != nil {
			signed, err := s.resolver.SignedURL(ctx, p)
			if err != nil {
				s.log.Errorf("sign attachment %q: %v", p, err)
			} else {
				a.URL = signed
			}
		}
		out = append(out, a)
	}
	return out
}

// Thumbnails resolves display URLs for the image attachments only, keyed by
// attachment index. Resolution is sequential and best effort; an attachment
// that fails to sign keeps its raw stored path as the URL.
func (s *Service) Thumbnails(ctx context.Context, paths []string) map[int]string {
	thumbs := make(map[int]string)
	for i, p := range paths {
		if Classify(p) != KindImage {
			continue
		}
		url := p
		if !isAbsoluteURL(p) && s.resolver != nil {
			if signed, err := s.resolver.SignedURL(ctx, p); err != nil {
				s.log.Errorf("sign thumbnail %q: %v", p, err)
			} else {
				url = signed
			}
		}
		thumbs[i] = url
	}
	return thumbs
}

func isAbsoluteURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}
