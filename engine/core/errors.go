package core

import (
	"errors"
	"fmt"
)

var (
	ErrUniformNotFound = errors.New("uniform not declared by shader program")
	ErrShaderCompile   = errors.New("shader stage failed to compile")
	ErrShaderLink      = errors.New("shader program failed to link")
	ErrBlockLayout     = errors.New("uniform block layout does not match its producer")
	ErrTextureCapacity = errors.New("texture unit capacity exceeded")
	ErrLightCapacity   = errors.New("light capacity exceeded")
	ErrBufferMap       = errors.New("failed to map buffer")
	ErrBufferUnmap     = errors.New("failed to unmap buffer")
	ErrInvalidHandle   = errors.New("invalid handle")
	ErrInvalidProperty = errors.New("invalid material property")
	ErrUnknown         = errors.New("unknown")
)

/**
 * @brief Reports that a fixed-capacity resource was asked to hold more
 * entries than it was declared with. Resource is the family ("texture",
 * "light") and Kind the bound that overflowed ("units", "point", ...).
 */
type CapacityError struct {
	Resource  string
	Kind      string
	Max       int
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s capacity exceeded for kind %q: requested %d, max %d", e.Resource, e.Kind, e.Requested, e.Max)
}

func (e *CapacityError) Unwrap() error {
	switch e.Resource {
	case "texture":
		return ErrTextureCapacity
	case "light":
		return ErrLightCapacity
	}
	return ErrUnknown
}

// IsFatal reports whether err belongs to the configuration or capacity
// families, which no runtime recovery can repair.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUniformNotFound) ||
		errors.Is(err, ErrShaderCompile) ||
		errors.Is(err, ErrShaderLink) ||
		errors.Is(err, ErrBlockLayout) ||
		errors.Is(err, ErrTextureCapacity) ||
		errors.Is(err, ErrLightCapacity)
}

// IsRecoverable reports whether err only costs the frame it happened in.
func IsRecoverable(err error) bool {
	if IsFatal(err) {
		return false
	}
	return errors.Is(err, ErrBufferMap) || errors.Is(err, ErrBufferUnmap)
}
