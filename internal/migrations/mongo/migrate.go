// Package mongo provisions the collections, schema validators and
// indexes the services expect. Safe to run repeatedly.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appointmentrepo "bookline/internal/appointments/repository"
	employeerepo "bookline/internal/employees/repository"
	"bookline/internal/migrations/mongo/validators"
	reviewrepo "bookline/internal/reviews/repository"
	servicerepo "bookline/internal/services/repository"
	"bookline/pkg/logger"
)

var (
	serviceIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	employeeIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "service_ids", Value: 1}}},
	}

	appointmentIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "date", Value: 1},
			{Key: "employee_id", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "date", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	reviewIndexes = []mongo.IndexModel{
		// Unique pair backs the one-review-per-appointment rule.
		{
			Keys: bson.D{
				{Key: "employee_id", Value: 1},
				{Key: "appointment_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "rating", Value: 1}}},
	}

	// The TTL index reaps abandoned confirm locks so a crashed
	// confirmation cannot hold a slot forever.
	confirmLockIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	collections := []struct {
		Name      string
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		{
			Name:      servicerepo.CollectionName,
			Indexes:   serviceIndexes,
			Validator: validators.ServiceValidator,
		},
		{
			Name:      employeerepo.CollectionName,
			Indexes:   employeeIndexes,
			Validator: validators.EmployeeValidator,
		},
		{
			Name:      appointmentrepo.CollectionName,
			Indexes:   appointmentIndexes,
			Validator: validators.AppointmentValidator,
		},
		{
			Name:      appointmentrepo.LockCollectionName,
			Indexes:   confirmLockIndexes,
			Validator: validators.ConfirmLockValidator,
		},
		{
			Name:      reviewrepo.CollectionName,
			Indexes:   reviewIndexes,
			Validator: validators.ReviewValidator,
		},
	}

	for _, def := range collections {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		return db.CreateCollection(ctx, name, opts)
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name)
	return nil
}
