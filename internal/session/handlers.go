package session

import (
	"errors"
	"io"

	"backend-driftline/internal/auth"
	"backend-driftline/internal/metrics"
	"backend-driftline/internal/profile"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, reg *Registry) {
	r.Get("/", func(c *fiber.Ctx) error {
		store, err := clientStore(c, reg)
		if err != nil {
			return err
		}
		snap, err := store.Initialize(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(snap)
	})

	r.Post("/signin", func(c *fiber.Ctx) error {
		store, err := clientStore(c, reg)
		if err != nil {
			return err
		}
		var req SignInRequest
		if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email and password required")
		}
		snap, err := store.SignIn(c.Context(), req)
		if err != nil {
			metrics.SignIns.WithLabelValues("error").Inc()
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		metrics.SignIns.WithLabelValues("ok").Inc()
		return c.JSON(snap)
	})

	r.Post("/signup", func(c *fiber.Ctx) error {
		store, err := clientStore(c, reg)
		if err != nil {
			return err
		}
		var req SignUpRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		snap, err := store.SignUp(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(snap)
	})

	r.Post("/signin/provider", func(c *fiber.Ctx) error {
		store, err := clientStore(c, reg)
		if err != nil {
			return err
		}
		var req auth.ProviderLoginRequest
		if err := c.BodyParser(&req); err != nil || req.Provider == "" || req.ProviderUID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "provider and provider_uid required")
		}
		snap, err := store.SignInWithProvider(c.Context(), req)
		if err != nil {
			metrics.SignIns.WithLabelValues("error").Inc()
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		metrics.SignIns.WithLabelValues("ok").Inc()
		return c.JSON(snap)
	})

	r.Post("/signout", func(c *fiber.Ctx) error {
		store, err := clientStore(c, reg)
		if err != nil {
			return err
		}
		userID := store.UserID()
		snap, err := store.SignOut(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		if userID != "" && reg.OnSignOut != nil {
			reg.OnSignOut(userID)
		}
		return c.JSON(snap)
	})

	r.Patch("/profile", func(c *fiber.Ctx) error {
		store, err := clientStore(c, reg)
		if err != nil {
			return err
		}
		var upd profile.Update
		if err := c.BodyParser(&upd); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		snap, err := store.UpdateProfile(c.Context(), upd)
		if err != nil {
			if errors.Is(err, ErrNotSignedIn) {
				return fiber.NewError(fiber.StatusUnauthorized, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(snap)
	})

	r.Post("/profile/image", func(c *fiber.Ctx) error {
		store, err := clientStore(c, reg)
		if err != nil {
			return err
		}
		slot := profile.ImageSlot(c.FormValue("slot", string(profile.SlotAvatar)))

		header, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file required")
		}
		file, err := header.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		url, err := store.UploadProfileImage(c.Context(), Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}, slot)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotSignedIn):
				return fiber.NewError(fiber.StatusUnauthorized, err.Error())
			case errors.Is(err, profile.ErrBadImageSlot):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			default:
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			}
		}
		return c.JSON(fiber.Map{"url": url})
	})
}

func clientStore(c *fiber.Ctx, reg *Registry) (*Store, error) {
	clientID := c.Get("X-Client-ID")
	if clientID == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "X-Client-ID header required")
	}
	return reg.For(clientID), nil
}
