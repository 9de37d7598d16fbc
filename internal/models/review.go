package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Valeurs possibles d'un vote d'utilité sur un avis
const (
	VoteHelpful    = "helpful"
	VoteNotHelpful = "notHelpful"
)

type ReviewVote struct {
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Vote   string             `bson:"vote" json:"vote"`
}

type Review struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID        primitive.ObjectID `bson:"productId" json:"productId"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	UserName         string             `bson:"userName" json:"userName"`
	Rating           int                `bson:"rating" json:"rating"`
	Title            string             `bson:"title" json:"title"`
	Comment          string             `bson:"comment" json:"comment"`
	VerifiedPurchase bool               `bson:"verifiedPurchase" json:"verifiedPurchase"`
	Votes            []ReviewVote       `bson:"votes" json:"votes"`
	HelpfulCount     int                `bson:"helpfulCount" json:"helpfulCount"`
	NotHelpfulCount  int                `bson:"notHelpfulCount" json:"notHelpfulCount"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CastVote enregistre le vote d'un utilisateur. Un utilisateur n'a qu'une
// voix : revoter remplace son vote précédent. Les compteurs sont ensuite
// recomptés depuis la liste.
func (r *Review) CastVote(userID primitive.ObjectID, vote string) {
	for i := range r.Votes {
		if r.Votes[i].UserID == userID {
			r.Votes[i].Vote = vote
			r.recount()
			return
		}
	}
	r.Votes = append(r.Votes, ReviewVote{UserID: userID, Vote: vote})
	r.recount()
}

func (r *Review) recount() {
	helpful, notHelpful := 0, 0
	for _, v := range r.Votes {
		if v.Vote == VoteHelpful {
			helpful++
		} else {
			notHelpful++
		}
	}
	r.HelpfulCount = helpful
	r.NotHelpfulCount = notHelpful
}
