package types

import (
	"fmt"
	"time"
)

// Kind identifies a class of captured artifact. Each kind owns a pending
// directory, an extension filter for retry scans, and a delivery timeout
// sized to its typical payload.
type Kind string

// Artifact kind constants.
const (
	KindVideo      Kind = "video"
	KindScreenshot Kind = "screenshot"
	KindActivity   Kind = "activity"
)

// Kinds returns all artifact kinds in sweep order.
func Kinds() []Kind {
	return []Kind{KindVideo, KindScreenshot, KindActivity}
}

// Valid reports whether k is a known artifact kind.
func (k Kind) Valid() bool {
	switch k {
	case KindVideo, KindScreenshot, KindActivity:
		return true
	}
	return false
}

// PendingDir returns the kind's pending directory name under the data root.
func (k Kind) PendingDir() string {
	return string(k) + "_pending"
}

// Extensions returns the file extensions the kind's retry scanner accepts.
func (k Kind) Extensions() []string {
	switch k {
	case KindVideo:
		return []string{".mp4", ".avi", ".webm"}
	case KindScreenshot:
		return []string{".png"}
	case KindActivity:
		return []string{".json"}
	}
	return nil
}

// DeliverTimeout returns the upload timeout for one artifact of this kind.
// Video segments get the largest budget; snapshots and logs are small.
func (k Kind) DeliverTimeout() time.Duration {
	switch k {
	case KindVideo:
		return 60 * time.Second
	case KindScreenshot:
		return 10 * time.Second
	case KindActivity:
		return 15 * time.Second
	}
	return 30 * time.Second
}

// ContentType maps a file extension (with leading dot) to its MIME type.
func ContentType(ext string) string {
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	case ".png":
		return "image/png"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// Container is the closed set of segment container formats. The rotate
// and finalize logic is uniform across arms; only codec selection varies.
type Container string

// Container constants.
const (
	ContainerMP4  Container = "mp4"
	ContainerAVI  Container = "avi"
	ContainerWebM Container = "webm"
)

// ParseContainer validates a container name. Unknown names are rejected
// rather than defaulted so configuration typos surface at startup.
func ParseContainer(s string) (Container, error) {
	switch Container(s) {
	case ContainerMP4, ContainerAVI, ContainerWebM:
		return Container(s), nil
	}
	return "", fmt.Errorf("unknown container %q (must be mp4, avi, or webm)", s)
}

// Ext returns the container's file extension with leading dot.
func (c Container) Ext() string {
	return "." + string(c)
}
