package metrics

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FeedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftline_feed_fetches_total",
		Help: "Feed page fetches by outcome.",
	}, []string{"status"})

	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "driftline_posts_created_total",
		Help: "Successfully created posts.",
	})

	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftline_likes_toggled_total",
		Help: "Like toggles by direction.",
	}, []string{"action"})

	SignIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftline_sign_ins_total",
		Help: "Sign-in attempts by outcome.",
	}, []string{"status"})
)

// Handler exposes the default prometheus registry on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
