package db

import (
	"context"
	"time"

	"github.com/parkrow/propertyops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoVisitorCollection implements VisitorCollection for MongoDB
type MongoVisitorCollection struct {
	Collection *mongo.Collection
}

// InsertPass inserts a visitor pass into the collection.
func (c *MongoVisitorCollection) InsertPass(ctx context.Context, pass models.VisitorPass) (primitive.ObjectID, error) {
	if pass.ID.IsZero() {
		pass.ID = primitive.NewObjectID()
	}
	pass.CreatedAt = time.Now()
	pass.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, pass)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return pass.ID, nil
}

// FindPassByID finds a visitor pass by its ID.
func (c *MongoVisitorCollection) FindPassByID(ctx context.Context, id string) (*models.VisitorPass, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var pass models.VisitorPass
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&pass)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pass, nil
}

// ListPassesByRequester returns a requester's passes, newest first.
func (c *MongoVisitorCollection) ListPassesByRequester(ctx context.Context, requesterID primitive.ObjectID) ([]models.VisitorPass, error) {
	return c.findPasses(ctx, bson.M{"requester_id": requesterID})
}

// ListPassesByProperty returns a property's passes, optionally by status.
func (c *MongoVisitorCollection) ListPassesByProperty(ctx context.Context, propertyID primitive.ObjectID, status *models.VisitorPassStatus) ([]models.VisitorPass, error) {
	match := bson.M{"property_id": propertyID}
	if status != nil {
		match["status"] = *status
	}
	return c.findPasses(ctx, match)
}

func (c *MongoVisitorCollection) findPasses(ctx context.Context, match bson.M) ([]models.VisitorPass, error) {
	mc, err := c.Collection.Find(ctx, match,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer mc.Close(ctx)

	var passes []models.VisitorPass
	if err := mc.All(ctx, &passes); err != nil {
		return nil, err
	}
	return passes, nil
}

// PatchPass applies a partial $set update to a pass by its ID.
func (c *MongoVisitorCollection) PatchPass(ctx context.Context, id string, set bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
