package handler

import (
	"time"

	"gorm.io/gorm"

	"github.com/superrabbithero/appmanage/auth"
	"github.com/superrabbithero/appmanage/clients"
	"github.com/superrabbithero/appmanage/repository"
	"github.com/superrabbithero/appmanage/storage"
)

// Services are the collaborators handlers need besides the database.
type Services struct {
	Store        storage.Store
	Tokens       *auth.Service
	AnswerCards  clients.AnswerCardFetcher
	Generator    clients.ImageGenerator
	SignedURLTTL time.Duration
}

// Handler serves every HTTP endpoint.
type Handler struct {
	images     *repository.ImageRepository
	docImages  *repository.DocImageRepository
	documents  *repository.DocumentRepository
	docTags    *repository.DocTagRepository
	tags       *repository.TagRepository
	categories *repository.CategoryRepository
	packages   *repository.PackageRepository
	icons      *repository.IconRepository
	users      *repository.UserRepository
	issues     *repository.IssueRepository

	store        storage.Store
	tokens       *auth.Service
	answerCards  clients.AnswerCardFetcher
	generator    clients.ImageGenerator
	signedURLTTL time.Duration
}

func New(db *gorm.DB, s Services) *Handler {
	ttl := s.SignedURLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Handler{
		images:     repository.NewImageRepository(db),
		docImages:  repository.NewDocImageRepository(db),
		documents:  repository.NewDocumentRepository(db),
		docTags:    repository.NewDocTagRepository(db),
		tags:       repository.NewTagRepository(db),
		categories: repository.NewCategoryRepository(db),
		packages:   repository.NewPackageRepository(db),
		icons:      repository.NewIconRepository(db),
		users:      repository.NewUserRepository(db),
		issues:     repository.NewIssueRepository(db),

		store:        s.Store,
		tokens:       s.Tokens,
		answerCards:  s.AnswerCards,
		generator:    s.Generator,
		signedURLTTL: ttl,
	}
}
