package renderer

import "errors"

var (
	ErrRendererInvalid = errors.New("renderer: renderer is invalid")
	ErrInvalidOptions  = errors.New("renderer: invalid options")
	ErrSceneNotDefined = errors.New("renderer: no scene defined")
	ErrUnknownFormat   = errors.New("renderer: unsupported screenshot format")
)
