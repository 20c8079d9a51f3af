package models

// Item is implemented by *Game, *Snippet and *Tutorial.
type Item interface {
	GetID() uint
	GetPID() string
	GetTitle() string
	OwnerID() uint
	// CategoryRef is zero for kinds without a category.
	CategoryRef() uint
	MediaURLs() []string
}

func (g *Game) GetID() uint       { return g.ID }
func (g *Game) GetPID() string    { return g.PID }
func (g *Game) GetTitle() string  { return g.Title }
func (g *Game) OwnerID() uint     { return g.CreatorID }
func (g *Game) CategoryRef() uint { return g.CategoryID }

func (s *Snippet) GetID() uint         { return s.ID }
func (s *Snippet) GetPID() string      { return s.PID }
func (s *Snippet) GetTitle() string    { return s.Title }
func (s *Snippet) OwnerID() uint       { return s.CreatorID }
func (s *Snippet) CategoryRef() uint   { return 0 }
func (s *Snippet) MediaURLs() []string { return nil }

func (t *Tutorial) GetID() uint       { return t.ID }
func (t *Tutorial) GetPID() string    { return t.PID }
func (t *Tutorial) GetTitle() string  { return t.Title }
func (t *Tutorial) OwnerID() uint     { return t.CreatorID }
func (t *Tutorial) CategoryRef() uint { return t.CategoryID }

// MediaURLs lists the stored cover image, if any.
func (t *Tutorial) MediaURLs() []string {
	if t.CoverImageURL == "" {
		return nil
	}
	return []string{t.CoverImageURL}
}
