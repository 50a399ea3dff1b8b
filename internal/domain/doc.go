// Package domain defines the todo and task models, their enumerated states,
// and the create/update payload types with their validation rules. It has no
// database dependency; repositories convert rows into these types.
package domain
