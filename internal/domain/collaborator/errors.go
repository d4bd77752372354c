package collaborator

import "errors"

var (
	ErrCollaboratorNotFound = errors.New("collaborator not found")
)
