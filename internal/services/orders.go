package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

// NextOrderNumber dérive le prochain numéro de commande en comptant les
// commandes du jour : ORD-YYYYMMDD-NNNNN. Deux créations simultanées
// peuvent compter le même total et produire le même numéro ; l'index
// unique sur orderNumber fera alors échouer la deuxième insertion.
func NextOrderNumber(ctx context.Context) (string, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	count, err := database.Orders().CountDocuments(ctx, bson.M{
		"createdAt": bson.M{"$gte": startOfDay},
	})
	if err != nil {
		return "", err
	}

	return models.FormatOrderNumber(now, int(count)+1), nil
}
