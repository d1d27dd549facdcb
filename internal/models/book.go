package models

// Book is a read-only catalog record from the books collection. ID is the
// Firestore document id, never a value taken from the document body.
type Book struct {
	ID          string  `firestore:"-" json:"id"`
	Title       string  `firestore:"title" json:"title"`
	Author      string  `firestore:"author" json:"author"`
	Rating      float64 `firestore:"rating" json:"rating"`
	ImageURL    string  `firestore:"imageUrl" json:"imageUrl"`
	Mood        string  `firestore:"mood" json:"mood"`
	Readers     int     `firestore:"readers" json:"readers"`
	Description string  `firestore:"description" json:"description"`
	Category    *string `firestore:"category" json:"category"`
	Trend       *string `firestore:"trend" json:"trend"`
	Featured    bool    `firestore:"featured" json:"featured"`
}
