package models

// Locale is read-only as far as the importer is concerned: the active set is
// loaded once at run start and every created entity gets one translation row
// per locale in it.
type Locale struct {
	Code string `json:"code" gorm:"primaryKey"`
	Name string `json:"name"`
}
