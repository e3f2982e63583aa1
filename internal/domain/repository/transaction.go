// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to handle transactions without depending on a
// specific DB driver like GORM. A tracked mutation and its change record are
// always appended through the same Execute call so they commit or abort as one
// unit.
type TransactionManager interface {
	// Execute runs a function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// Otherwise, it's committed. All repository operations within the function
	// use the same database transaction.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to one specific
// transaction.
type RepositoryFactory interface {
	// UserRepo returns a UserRepository bound to the current transaction.
	UserRepo() UserRepository

	// SessionRepo returns a SessionRepository bound to the current transaction.
	SessionRepo() SessionRepository

	// AppointmentRepo returns an AppointmentRepository bound to the current transaction.
	AppointmentRepo() AppointmentRepository

	// SignupRepo returns a SignupRepository bound to the current transaction.
	SignupRepo() SignupRepository

	// ChangeLogRepo returns a ChangeLogRepository bound to the current transaction.
	ChangeLogRepo() ChangeLogRepository
}
