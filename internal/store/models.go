package store

import "time"

// Listing statuses. ToggleListingVisibility only ever moves a listing
// between StatusAcquired and StatusForSale.
const (
	StatusAcquired = "Acquired"
	StatusForSale  = "For Sale"
	StatusSold     = "Sold"
	StatusForRent  = "For Rent"
)

type Listing struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Location         string    `json:"location"`
	Type             string    `json:"type"`
	Size             float64   `json:"size"`
	Bedrooms         int       `json:"bedrooms"`
	Bathrooms        int       `json:"bathrooms"`
	AcquisitionPrice float64   `json:"acquisitionPrice"`
	SellingPrice     float64   `json:"sellingPrice"`
	Status           string    `json:"status"`
	IsHotDeal        bool      `json:"isHotDeal"`
	Images           []string  `json:"images"`
	Profit           float64   `json:"profit"`
	ROI              float64   `json:"roi"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type TeamMember struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Position    string    `json:"position"`
	Description string    `json:"description"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Portfolio   string    `json:"portfolio"`
	ProofOfWork string    `json:"proofOfWork"`
	Photo       string    `json:"photo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Body      string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Feedback struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Rating    int       `json:"rating"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContentDocument is a singleton site-copy document addressed by a
// fixed section key rather than a generated id. Data holds the full
// JSON shape; saves replace it wholesale.
type ContentDocument struct {
	Section   string    `json:"section"`
	Data      []byte    `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AdminUser struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
