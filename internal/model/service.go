package model

// Service is a bookable treatment. Duration drives slot computation;
// appointments store their own end times, so a later duration edit never
// changes historical bookings.
type Service struct {
	Base
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Duration    int     `db:"duration" json:"duration"` // in minutes
	Price       float64 `db:"price" json:"price"`
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=1000"`
	Duration    int     `json:"duration" binding:"required,gt=0,lte=240"`
	Price       float64 `json:"price" binding:"required,gte=0"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=1000"`
	Duration    *int     `json:"duration" binding:"omitempty,gt=0,lte=240"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
}
