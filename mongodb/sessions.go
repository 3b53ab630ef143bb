package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/flamepup2002/nuttracker-sub002/models"
)

func CreateSession(ctx context.Context, session *models.Session) error {
	collection := MongoClient.Database(MongoDatabase).Collection(SessionCollection)
	_, err := collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("error creating session: %v", err)
	}
	return nil
}

func GetSessionByID(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	collection := MongoClient.Database(MongoDatabase).Collection(SessionCollection)

	session := &models.Session{}
	err := collection.FindOne(
		ctx,
		map[string]interface{}{"session_id": sessionID, "user_id": userID},
	).Decode(session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting session %s: %v", sessionID, err)
	}
	return session, nil
}
