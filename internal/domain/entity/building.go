package entity

// Building edificio.
type Building struct {
	ID   int64
	Name string
}

// Room sala dentro de un edificio. SectorID es una referencia débil a la base core.
type Room struct {
	ID           int64
	BuildingID   int64
	BuildingName string // solo lectura
	Number       string
	Label        string
	SectorID     *int64
	FloorLabel   string
	Capacity     *int
	Notes        string
}

// DisplayLabel número de sala seguido de la etiqueta si la hay ("204 - Lab").
func (r Room) DisplayLabel() string {
	if r.Label == "" {
		return r.Number
	}
	return r.Number + " - " + r.Label
}
