// Package compose extracts declared image tags from a compose-style file,
// supporting dual tagging: a target's generated version can be paired with
// the tag a compose service already declares for the same image.
package compose

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type file struct {
	Services map[string]service `yaml:"services"`
}

type service struct {
	Image string `yaml:"image"`
}

// DeclaredTags reads a compose file and returns service name -> declared
// image tag. Services whose image has no tag suffix are omitted. A missing
// file is a non-event and returns an empty map.
func DeclaredTags(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading compose file %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing compose file %s: %w", path, err)
	}

	tags := make(map[string]string)
	for name, svc := range f.Services {
		if tag := imageTag(svc.Image); tag != "" {
			tags[name] = tag
		}
	}
	return tags, nil
}

// imageTag returns the tag portion of an image reference, or "".
// A colon inside the last path segment separates the tag; a colon before a
// slash is a registry port, not a tag.
func imageTag(image string) string {
	slash := strings.LastIndex(image, "/")
	colon := strings.LastIndex(image, ":")
	if colon <= slash {
		return ""
	}
	return image[colon+1:]
}
