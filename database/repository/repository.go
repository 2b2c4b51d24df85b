package repository

import (
	"qartelbot/database"
	counterpartyRepo "qartelbot/database/repository/counterparty"
	projectRepo "qartelbot/database/repository/project"
	trustRepo "qartelbot/database/repository/trust"
	userRepo "qartelbot/database/repository/user"
)

// ErrNotFound is shared by every repository.
var ErrNotFound = database.ErrNotFound

// Re-export the UserRepository interface and constructor.
type UserRepository = userRepo.UserRepository

var NewMongoUserRepo = userRepo.NewMongoUserRepo

// Re-export the CounterpartyRepository interface and constructor.
type CounterpartyRepository = counterpartyRepo.CounterpartyRepository

var NewMongoCounterpartyRepo = counterpartyRepo.NewMongoCounterpartyRepo

// Re-export the TrustRepository interface and constructor.
type TrustRepository = trustRepo.TrustRepository

var NewMongoTrustRepo = trustRepo.NewMongoTrustRepo

// Re-export the ProjectRepository interface and constructor.
type ProjectRepository = projectRepo.ProjectRepository

var NewMongoProjectRepo = projectRepo.NewMongoProjectRepo
