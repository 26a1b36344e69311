package server

import (
	"stickynotes/internal/auth"
	"stickynotes/internal/notes"

	"github.com/gofiber/fiber/v2"
)

const flashKey = "_flashes"

// flash queues outcomes in the session until the next rendered page.
func flash(c *fiber.Ctx, outcomes ...notes.Outcome) {
	sess := auth.SessionFrom(c)
	if sess == nil {
		return
	}
	pending, _ := sess.Get(flashKey).([]notes.Outcome)
	sess.Set(flashKey, append(pending, outcomes...))
}

func popFlashes(c *fiber.Ctx) []notes.Outcome {
	sess := auth.SessionFrom(c)
	if sess == nil {
		return nil
	}
	pending, _ := sess.Get(flashKey).([]notes.Outcome)
	if len(pending) > 0 {
		sess.Delete(flashKey)
	}
	return pending
}

// render executes a page template with the values every page needs.
func (s *FiberServer) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["User"] = auth.CurrentUser(c)
	data["Flashes"] = popFlashes(c)
	data["CSRF"] = c.Locals(csrfContextKey)
	return c.Render(name, data)
}
