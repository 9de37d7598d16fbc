package services

import (
	"context"
	"log"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
)

// RatingSummary est le résumé des avis d'un produit
type RatingSummary struct {
	Average float64
	Count   int
}

// Summarize calcule la note moyenne (arrondie à 1 décimale) et le nombre
// d'avis. Sans avis : (0, 0).
func Summarize(ratings []int) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return RatingSummary{
		Average: math.Round(avg*10) / 10,
		Count:   len(ratings),
	}
}

// RecomputeProductRating recalcule entièrement averageRating/numReviews
// d'un produit à partir de tous ses avis. Appelé après chaque création,
// modification ou suppression d'avis. Dernier écrivain gagnant.
func RecomputeProductRating(ctx context.Context, productID primitive.ObjectID) {
	cursor, err := database.Reviews().Find(ctx, bson.M{"productId": productID})
	if err != nil {
		log.Println("⚠️ Erreur lecture avis pour recalcul:", err)
		return
	}
	defer cursor.Close(ctx)

	var ratings []int
	for cursor.Next(ctx) {
		var doc struct {
			Rating int `bson:"rating"`
		}
		if cursor.Decode(&doc) == nil {
			ratings = append(ratings, doc.Rating)
		}
	}

	summary := Summarize(ratings)

	_, err = database.Products().UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{
			"averageRating": summary.Average,
			"numReviews":    summary.Count,
			"updatedAt":     time.Now(),
		}},
	)
	if err != nil {
		log.Println("⚠️ Erreur mise à jour note produit:", err)
		return
	}

	cache.InvalidateProductCache(ctx, productID)
}
