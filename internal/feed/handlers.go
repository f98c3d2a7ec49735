package feed

import (
	"errors"
	"io"

	"backend-driftline/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, reg *Registry, authMiddleware, optionalAuth fiber.Handler) {
	r.Get("/", optionalAuth, func(c *fiber.Ctx) error {
		store := reg.For(viewerID(c))
		reset := c.QueryBool("reset", false)

		if err := store.FetchPage(c.Context(), reset); err != nil {
			switch {
			case errors.Is(err, ErrFetchInFlight):
				metrics.FeedFetches.WithLabelValues("in_flight").Inc()
				return fiber.NewError(fiber.StatusConflict, err.Error())
			case errors.Is(err, ErrFetchSuperseded):
				metrics.FeedFetches.WithLabelValues("superseded").Inc()
				return fiber.NewError(fiber.StatusConflict, err.Error())
			default:
				metrics.FeedFetches.WithLabelValues("error").Inc()
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			}
		}
		metrics.FeedFetches.WithLabelValues("ok").Inc()
		return c.JSON(store.Snapshot())
	})

	r.Post("/posts", authMiddleware, func(c *fiber.Ctx) error {
		content := c.FormValue("content")
		files, err := formUploads(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		store := reg.For(viewerID(c))
		post, err := store.CreatePost(c.Context(), content, files)
		if err != nil {
			var partial *PartialUploadError
			switch {
			case errors.Is(err, ErrEmptyPost):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.As(err, &partial):
				return fiber.NewError(fiber.StatusBadGateway, partial.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		metrics.PostsCreated.Inc()
		return c.Status(fiber.StatusCreated).JSON(post)
	})

	r.Post("/posts/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Liked bool `json:"liked"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}

		store := reg.For(viewerID(c))
		if err := store.ToggleLike(c.Context(), c.Params("id"), body.Liked); err != nil {
			if errors.Is(err, ErrAlreadyLiked) {
				// The client's liked flag was stale; nothing changed remotely.
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		action := "like"
		if body.Liked {
			action = "unlike"
		}
		metrics.LikesToggled.WithLabelValues(action).Inc()
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/posts/:id", authMiddleware, func(c *fiber.Ctx) error {
		store := reg.For(viewerID(c))
		if err := store.DeletePost(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/users/:id/posts", optionalAuth, func(c *fiber.Ctx) error {
		store := reg.For(viewerID(c))
		posts, err := store.UserPosts(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(posts)
	})
}

func viewerID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}

func formUploads(c *fiber.Ctx) ([]Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Text-only submissions arrive without a multipart body.
		return nil, nil
	}

	var uploads []Upload
	for _, header := range form.File["files"] {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}
