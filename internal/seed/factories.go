// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"devhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "DevHub-Seed-2024!"

// SeedOptions tunes how the Factory builds rows.
type SeedOptions struct {
	// DryRun logs rows instead of inserting them.
	DryRun bool
	// SkipBcrypt stores a cheap hash. Seeded accounts can then not log in.
	SkipBcrypt bool
	// MaxDays spreads created_at over the last MaxDays days.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db           *gorm.DB
	opts         SeedOptions
	passwordHash string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	f := &Factory{db: db, opts: opts, nextID: 1000}
	if opts.SkipBcrypt {
		f.passwordHash = "seed-no-login"
	} else {
		hash, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		f.passwordHash = string(hash)
	}
	return f
}

// createdAt returns a random moment within the configured window.
func (f *Factory) createdAt() time.Time {
	end := time.Now().UTC()
	return gofakeit.DateRange(end.AddDate(0, 0, -f.opts.MaxDays), end)
}

func (f *Factory) insert(kind string, id *uint, row any) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		log.Printf("[dry-run] create %s: %+v", kind, row)
		return nil
	}
	return f.db.Create(row).Error
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	handle := strings.ToLower(gofakeit.LetterN(8))
	user := &models.User{
		Username:  fmt.Sprintf("%s_%d", handle, gofakeit.Number(100, 999)),
		Email:     fmt.Sprintf("%s.%s@devhub.test", handle, gofakeit.DigitN(4)),
		Password:  f.passwordHash,
		Bio:       gofakeit.Sentence(10),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Links: datatypes.NewJSONType(models.SocialLinks{
			Website: gofakeit.URL(),
			GitHub:  "https://github.com/" + handle,
		}),
		CreatedAt: f.createdAt(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.insert("user", &user.ID, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GrantRole assigns an existing role to user.
func (f *Factory) GrantRole(user *models.User, roleName string) error {
	if f.opts.DryRun {
		log.Printf("[dry-run] grant %s to %s", roleName, user.Username)
		return nil
	}
	var role models.Role
	if err := f.db.Where("name = ?", roleName).First(&role).Error; err != nil {
		return fmt.Errorf("find role %q: %w", roleName, err)
	}
	return f.db.Model(user).Association("Roles").Append(&role)
}

// CreateGame constructs and persists a sample game.
func (f *Factory) CreateGame(creator *models.User, category *models.Category, status models.ModerationStatus, overrides ...func(*models.Game)) (*models.Game, error) {
	seed := gofakeit.UUID()
	game := &models.Game{
		Title:         gofakeit.AppName(),
		Excerpt:       gofakeit.Sentence(8),
		Description:   gofakeit.Paragraph(2, 4, 12, "\n\n"),
		Version:       gofakeit.AppVersion(),
		FileSize:      int64(gofakeit.Number(1<<20, 512<<20)),
		CoverImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/1200/675", seed),
		Screenshots: datatypes.JSONSlice[string]{
			fmt.Sprintf("https://picsum.photos/seed/%s-1/1280/720", seed),
			fmt.Sprintf("https://picsum.photos/seed/%s-2/1280/720", seed),
		},
		GameURL:    gofakeit.URL(),
		Status:     status,
		Views:      int64(gofakeit.Number(0, 5000)),
		Likes:      int64(gofakeit.Number(0, 800)),
		Stars:      int64(gofakeit.Number(0, 300)),
		Downloads:  int64(gofakeit.Number(0, 2000)),
		CreatorID:  creator.ID,
		CategoryID: category.ID,
		CreatedAt:  f.createdAt(),
	}
	for _, override := range overrides {
		override(game)
	}
	if err := f.insert("game", &game.ID, game); err != nil {
		return nil, err
	}
	return game, nil
}

var snippetLanguages = []struct {
	language, engine, code string
}{
	{"go", "ebiten", "func (g *Game) Update() error {\n\tg.player.Move(ebiten.ActualTPS())\n\treturn nil\n}"},
	{"csharp", "unity", "void Update() {\n    transform.Rotate(Vector3.up * speed * Time.deltaTime);\n}"},
	{"gdscript", "godot", "func _physics_process(delta):\n\tvelocity = move_and_slide(velocity)"},
	{"lua", "love2d", "function love.update(dt)\n  player.x = player.x + player.speed * dt\nend"},
	{"typescript", "phaser", "update(time: number, delta: number) {\n  this.player.x += this.speed * delta;\n}"},
}

// CreateSnippet constructs and persists a sample snippet.
func (f *Factory) CreateSnippet(creator *models.User, status models.ModerationStatus, overrides ...func(*models.Snippet)) (*models.Snippet, error) {
	lang := snippetLanguages[gofakeit.Number(0, len(snippetLanguages)-1)]
	snippet := &models.Snippet{
		Title:       gofakeit.HackerPhrase(),
		Description: gofakeit.Sentence(12),
		Code:        lang.code,
		Language:    lang.language,
		Engine:      lang.engine,
		Status:      status,
		Views:       int64(gofakeit.Number(0, 3000)),
		Likes:       int64(gofakeit.Number(0, 400)),
		Forks:       int64(gofakeit.Number(0, 60)),
		CreatorID:   creator.ID,
		CreatedAt:   f.createdAt(),
	}
	for _, override := range overrides {
		override(snippet)
	}
	if err := f.insert("snippet", &snippet.ID, snippet); err != nil {
		return nil, err
	}
	return snippet, nil
}

// CreateTutorial constructs and persists a sample tutorial.
func (f *Factory) CreateTutorial(creator *models.User, category *models.Category, status models.ModerationStatus, overrides ...func(*models.Tutorial)) (*models.Tutorial, error) {
	content := gofakeit.Paragraph(5, 5, 20, "\n\n")
	tutorial := &models.Tutorial{
		Title:         "How to " + strings.ToLower(gofakeit.HackerPhrase()),
		Excerpt:       gofakeit.Sentence(14),
		Content:       content,
		ReadTime:      max(1, len(strings.Fields(content))/200),
		CoverImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
		Status:        status,
		Views:         int64(gofakeit.Number(0, 8000)),
		Likes:         int64(gofakeit.Number(0, 600)),
		CreatorID:     creator.ID,
		CategoryID:    category.ID,
		CreatedAt:     f.createdAt(),
	}
	for _, override := range overrides {
		override(tutorial)
	}
	if err := f.insert("tutorial", &tutorial.ID, tutorial); err != nil {
		return nil, err
	}
	return tutorial, nil
}

// CreateSubmission records the submission of item. Resolved statuses get a
// resolution time after the submission, and rejections a comment.
func (f *Factory) CreateSubmission(kind models.ContentKind, item models.Item, status models.ModerationStatus) (*models.Submission, error) {
	submittedAt := f.createdAt()
	sub := &models.Submission{
		Title:       kind.SubmissionTitle(item.GetTitle()),
		Status:      status,
		SubmittedAt: submittedAt,
		CreatorID:   item.OwnerID(),
	}
	sub.Attach(kind, item.GetID())

	if status != models.StatusPending {
		resolvedAt := submittedAt.Add(time.Duration(gofakeit.Number(1, 72)) * time.Hour)
		sub.ResolvedAt = &resolvedAt
	}
	switch status {
	case models.StatusRejected:
		comment := "Please address: " + gofakeit.Sentence(6)
		sub.Comment = &comment
	case models.StatusApproved:
		comment := "Looks good, thanks!"
		sub.Comment = &comment
	}

	if err := f.insert("submission", &sub.ID, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// AttachTags links tags to a content row.
func (f *Factory) AttachTags(row any, tags []models.Tag) error {
	if f.opts.DryRun || len(tags) == 0 {
		return nil
	}
	return f.db.Model(row).Association("Tags").Append(tags)
}
