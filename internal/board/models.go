package board

// Listing is a single job/internship posting.
type Listing struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Company     string `gorm:"not null" json:"company"`
	Position    string `gorm:"not null" json:"position"`
	Description string `json:"description"`
	URL         string `json:"url"`
	School      string `gorm:"index" json:"school"`
}

// Comment is a user review of a listing. Rating is kept in [0,1]; the display
// layer scales it to five stars. Timestamp is server-assigned at insert, in
// millisecond epoch time. Comments are append-only.
type Comment struct {
	ID        uint    `gorm:"primaryKey" json:"-"`
	Author    string  `gorm:"not null" json:"author"`
	Content   string  `gorm:"not null" json:"content"`
	Timestamp int64   `gorm:"not null" json:"timestamp"`
	Rating    float64 `gorm:"not null" json:"rating"`
	ListingID int64   `gorm:"not null;index" json:"listing_id"`
}

func (Listing) TableName() string { return "board.listings" }
func (Comment) TableName() string { return "board.comments" }
