package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/models"

	"github.com/rs/zerolog"
)

// Mode says how the next inbound event from a user is interpreted. Exactly
// one mode is active per user at any time.
type Mode int

const (
	ModeIdle Mode = iota
	ModeAwaitingBarcodePhoto
	ModeAwaitingFoodPhoto
	ModeAwaitingPortionAmount
	ModeAwaitingProfileAge
	ModeAwaitingProfileGender
	ModeAwaitingProfileWeight
	ModeAwaitingProfileHeight
	ModeAwaitingProfileActivity
	ModeAwaitingManualCalorieGoal
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "Idle"
	case ModeAwaitingBarcodePhoto:
		return "AwaitingBarcodePhoto"
	case ModeAwaitingFoodPhoto:
		return "AwaitingFoodPhoto"
	case ModeAwaitingPortionAmount:
		return "AwaitingPortionAmount"
	case ModeAwaitingProfileAge:
		return "AwaitingProfileAge"
	case ModeAwaitingProfileGender:
		return "AwaitingProfileGender"
	case ModeAwaitingProfileWeight:
		return "AwaitingProfileWeight"
	case ModeAwaitingProfileHeight:
		return "AwaitingProfileHeight"
	case ModeAwaitingProfileActivity:
		return "AwaitingProfileActivity"
	case ModeAwaitingManualCalorieGoal:
		return "AwaitingManualCalorieGoal"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// profileDraft is the scratch data collected across the goal-setup flow.
type profileDraft struct {
	Age    int
	Gender string
	Weight float64
	Height float64
}

// Session is one user's conversation state. Sessions live in memory only;
// anything durable goes through LogService. Overlapping events for one user
// resolve last-write-wins on this struct (accepted race, the transport
// delivers per-user events in order).
type Session struct {
	Mode           Mode
	PendingProduct *ProductRecord
	Draft          profileDraft
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*Session)}
}

// get lazily creates an Idle session on first contact.
func (s *sessionStore) get(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{Mode: ModeIdle}
		s.sessions[userID] = sess
	}
	return sess
}

// Menu selections the transport can send.
const (
	MenuLogPhoto    = "log_photo"
	MenuScanBarcode = "scan_barcode"
	MenuSetGoal     = "set_goal"
	MenuManualGoal  = "manual_goal"
	MenuDailyLog    = "daily_log"
)

// Reply is what the transport renders back: plain text, optional keyboard
// options, and an optional journal payload.
type Reply struct {
	Text    string       `json:"text"`
	Options []string     `json:"options,omitempty"`
	Journal *JournalView `json:"journal,omitempty"`
	GroupID string       `json:"group_id,omitempty"`
}

// Genders offered by the goal-setup flow. Selected, never typed.
var genderOptions = []string{"Male", "Female"}

// ConversationService is the per-user state machine driving every flow: free
// logging, barcode + portion, photo analysis, goal setup, detail toggling.
// Provider and storage calls only happen at its edges, and provider errors
// never escape it.
type ConversationService struct {
	sessions *sessionStore
	logs     *LogService
	journal  *JournalService
	oracle   Oracle
	products ProductLookup
	barcodes BarcodeDecoder
	mirror   *SyncDispatcher
	logger   zerolog.Logger
	now      func() time.Time
}

// Oracle is the untrusted vision/text nutrition extractor.
type Oracle interface {
	ExtractFromImage(ctx context.Context, image []byte, caption string) ([]OracleItem, string, error)
	ExtractFromText(ctx context.Context, text string) ([]OracleItem, string, error)
	ComputeGoals(ctx context.Context, age int, gender string, weight, height float64, activity string) (GoalResult, error)
}

// ProductLookup resolves barcodes and product names to per-100g records.
type ProductLookup interface {
	LookupBarcode(code string) (*ProductRecord, error)
	SearchProduct(query string) (*ProductRecord, error)
}

// BarcodeDecoder extracts a barcode string from photo bytes.
type BarcodeDecoder interface {
	Decode(image []byte) (string, error)
}

func NewConversationService(
	logs *LogService,
	journal *JournalService,
	oracle Oracle,
	products ProductLookup,
	barcodes BarcodeDecoder,
	dispatcher *SyncDispatcher,
	logger zerolog.Logger,
) *ConversationService {
	return &ConversationService{
		sessions: newSessionStore(),
		logs:     logs,
		journal:  journal,
		oracle:   oracle,
		products: products,
		barcodes: barcodes,
		mirror:   dispatcher,
		logger:   logger,
		now:      time.Now,
	}
}

// Mode reports the user's current mode (lazily Idle).
func (c *ConversationService) Mode(userID string) Mode {
	return c.sessions.get(userID).Mode
}

func (c *ConversationService) resetToIdle(sess *Session) {
	sess.Mode = ModeIdle
	sess.PendingProduct = nil
	sess.Draft = profileDraft{}
}

func isCancel(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "/cancel" || t == "cancel"
}

// Start handles first contact: register the user and greet.
func (c *ConversationService) Start(userID, username string) Reply {
	sess := c.sessions.get(userID)
	c.resetToIdle(sess)

	user, err := c.logs.EnsureUser(userID, username)
	if err != nil {
		return Reply{Text: "Something went wrong saving your profile. Please try /start again."}
	}

	name := user.Username
	if name == "" {
		name = "there"
	}
	return Reply{Text: fmt.Sprintf(
		"Hello, %s! I'm your AI Nutrition Bot.\n\nJust tell me what you ate (e.g., '2 eggs and a toast') or send me a photo of your meal! 📸", name)}
}

// Menu handles an explicit menu selection from Idle (or anywhere: selecting
// a menu entry abandons whatever flow was active).
func (c *ConversationService) Menu(userID, selection string) Reply {
	sess := c.sessions.get(userID)
	c.resetToIdle(sess)

	switch selection {
	case MenuLogPhoto:
		sess.Mode = ModeAwaitingFoodPhoto
		return Reply{Text: "Send me a photo of your meal and I'll work out the nutrition. 📸"}
	case MenuScanBarcode:
		sess.Mode = ModeAwaitingBarcodePhoto
		return Reply{Text: "Send me a clear photo of the barcode. 🔎"}
	case MenuSetGoal:
		sess.Mode = ModeAwaitingProfileAge
		return Reply{Text: "Let's set up your daily goal. How old are you?"}
	case MenuManualGoal:
		sess.Mode = ModeAwaitingManualCalorieGoal
		return Reply{Text: "What should your daily calorie goal be? (kcal)"}
	case MenuDailyLog:
		view, err := c.journal.BuildDay(userID, c.now(), false)
		if err != nil {
			return Reply{Text: "I couldn't load your journal right now."}
		}
		return Reply{Text: view.Text, Journal: &view}
	}
	return Reply{Text: "I don't know that menu option."}
}

// Text routes a free-text message according to the current mode.
func (c *ConversationService) Text(ctx context.Context, userID, text string) Reply {
	sess := c.sessions.get(userID)

	if isCancel(text) {
		c.resetToIdle(sess)
		return Reply{Text: "Cancelled. What's next?"}
	}

	switch sess.Mode {
	case ModeAwaitingPortionAmount:
		return c.portionAnswer(sess, userID, text)
	case ModeAwaitingProfileAge, ModeAwaitingProfileGender, ModeAwaitingProfileWeight,
		ModeAwaitingProfileHeight, ModeAwaitingProfileActivity:
		return c.ProfileAnswer(ctx, userID, text)
	case ModeAwaitingManualCalorieGoal:
		return c.manualGoalAnswer(sess, userID, text)
	case ModeAwaitingBarcodePhoto:
		return Reply{Text: "I'm waiting for a barcode photo. Send one, or type 'cancel'."}
	case ModeAwaitingFoodPhoto:
		return Reply{Text: "I'm waiting for a meal photo. Send one, or type 'cancel'."}
	}
	return c.freeText(ctx, sess, userID, text)
}

// freeText is the Idle path: the oracle decides chat vs log.
func (c *ConversationService) freeText(ctx context.Context, sess *Session, userID, text string) Reply {
	raw, oracleReply, err := c.oracle.ExtractFromText(ctx, text)
	if err != nil {
		c.logger.Warn().Err(err).Str("user", userID).Msg("text oracle failed")
		return Reply{Text: "Sorry, I encountered an error processing that. Nothing was logged."}
	}
	if len(raw) == 0 {
		// chatting, or no food detected; a reply alone is a valid outcome
		return Reply{Text: oracleReply}
	}
	return c.logItems(sess, userID, raw, oracleReply)
}

// logItems normalizes and persists one atomic meal group, then mirrors.
func (c *ConversationService) logItems(sess *Session, userID string, raw []OracleItem, oracleReply string) Reply {
	now := c.now()
	items := NormalizeOracleItems(userID, raw, now)

	groupID, err := c.logs.CreateGroup(userID, items)
	if err != nil {
		c.logger.Error().Err(err).Str("user", userID).Msg("meal group insert failed")
		return Reply{Text: "I understood your meal but couldn't save it. Please try again."}
	}
	c.mirror.SyncUser(userID)

	group := Aggregate(items)
	text := oracleReply
	if text != "" {
		text += "\n\n"
	}
	text += fmt.Sprintf("Logged %d item(s): %d kcal (P %.1f / C %.1f / F %.1f).",
		len(items), group.TotalCalories, group.TotalProtein, group.TotalCarbs, group.TotalFats)

	return Reply{Text: text, GroupID: groupID}
}

// Photo routes an inbound photo according to the current mode.
func (c *ConversationService) Photo(ctx context.Context, userID string, image []byte, caption string) Reply {
	sess := c.sessions.get(userID)

	switch sess.Mode {
	case ModeAwaitingBarcodePhoto:
		return c.barcodePhoto(sess, userID, image)
	case ModeAwaitingFoodPhoto:
		return c.foodPhoto(ctx, sess, userID, image, caption, true)
	case ModeIdle:
		// ambiguous: try the barcode first, fall back to AI analysis
		if code, err := c.barcodes.Decode(image); err == nil {
			if product, err := c.products.LookupBarcode(code); err == nil {
				sess.PendingProduct = product
				sess.Mode = ModeAwaitingPortionAmount
				return c.askPortion(product)
			}
		}
		return c.foodPhoto(ctx, sess, userID, image, caption, false)
	}
	// a photo makes no sense mid portion/profile flow; re-prompt in place
	return Reply{Text: "I wasn't expecting a photo right now. Answer the question above, or type 'cancel'."}
}

func (c *ConversationService) askPortion(product *ProductRecord) Reply {
	return Reply{Text: fmt.Sprintf(
		"Found: %s\nCalories: %.0f kcal per 100g\nProtein: %.1fg | Carbs: %.1fg | Fats: %.1fg\n\nHow many grams did you have? (e.g. 150 or 150g; '1' means one 100g serving)",
		product.Name, product.Calories, product.Protein, product.Carbs, product.Fats)}
}

// barcodePhoto is the strict barcode mode: every failure re-prompts and the
// mode only ends on success or explicit cancel.
func (c *ConversationService) barcodePhoto(sess *Session, userID string, image []byte) Reply {
	code, err := c.barcodes.Decode(image)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn().Err(err).Str("user", userID).Msg("barcode decode failed")
		}
		return Reply{Text: "I couldn't read a barcode in that photo. Try a sharper, closer shot, or type 'cancel'."}
	}

	product, err := c.products.LookupBarcode(code)
	if errors.Is(err, ErrNotFound) {
		return Reply{Text: fmt.Sprintf("Barcode %s isn't in the product database. Try another photo or type 'cancel'.", code)}
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("user", userID).Msg("product lookup failed")
		return Reply{Text: "The product database isn't answering right now. Try again in a moment, or type 'cancel'."}
	}

	sess.PendingProduct = product
	sess.Mode = ModeAwaitingPortionAmount
	return c.askPortion(product)
}

// foodPhoto runs the AI analysis and logs whatever it found. strict says
// whether we are in the explicit log-meal flow (stay and retry on provider
// failure) or the ambiguous Idle fallback (always end Idle).
func (c *ConversationService) foodPhoto(ctx context.Context, sess *Session, userID string, image []byte, caption string, strict bool) Reply {
	raw, oracleReply, err := c.oracle.ExtractFromImage(ctx, image, caption)
	if err != nil {
		c.logger.Warn().Err(err).Str("user", userID).Msg("image oracle failed")
		if strict {
			return Reply{Text: "Sorry, I had trouble seeing that picture. Send it again, or type 'cancel'."}
		}
		return Reply{Text: "Sorry, I had trouble seeing that picture."}
	}

	c.resetToIdle(sess)
	if len(raw) == 0 {
		return Reply{Text: oracleReply}
	}
	return c.logItems(sess, userID, raw, oracleReply)
}

// portionAnswer finishes the barcode flow: parse grams, scale the pending
// product, persist, mirror. Malformed input must leave both the pending
// product and the mode untouched.
func (c *ConversationService) portionAnswer(sess *Session, userID, text string) Reply {
	if sess.PendingProduct == nil {
		// server restart or expired session; never crash on the orphan answer
		c.logger.Warn().Err(ErrStaleSession).Str("user", userID).Msg("portion answer with no pending product")
		c.resetToIdle(sess)
		return Reply{Text: "That session expired and I no longer have the scanned product. Scan the barcode again. 🙏"}
	}

	grams, err := ParsePortionGrams(text)
	if err != nil {
		return Reply{Text: "I need the amount in grams, like 150 or 150g. How much was it?"}
	}

	now := c.now()
	item := ScaleProduct(userID, *sess.PendingProduct, grams, now)
	groupID, err := c.logs.CreateGroup(userID, []models.LogItem{item})
	if err != nil {
		c.logger.Error().Err(err).Str("user", userID).Msg("portion insert failed")
		return Reply{Text: "I couldn't save that. Please send the amount again."}
	}

	c.resetToIdle(sess)
	c.mirror.SyncUser(userID)

	return Reply{
		Text: fmt.Sprintf("Logged %s (%.0fg): %d kcal (P %.1f / C %.1f / F %.1f), %s.",
			item.FoodName, grams, item.Calories, item.Protein, item.Carbs, item.Fats, item.MealPeriod),
		GroupID: groupID,
	}
}

// ProfileAnswer advances the linear goal-setup pipeline. Non-matching input
// re-prompts without advancing.
func (c *ConversationService) ProfileAnswer(ctx context.Context, userID, value string) Reply {
	sess := c.sessions.get(userID)

	if isCancel(value) {
		c.resetToIdle(sess)
		return Reply{Text: "Cancelled. What's next?"}
	}

	switch sess.Mode {
	case ModeAwaitingProfileAge:
		age, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || age <= 0 || age > 120 {
			return Reply{Text: "Please send your age as a whole number."}
		}
		sess.Draft.Age = age
		sess.Mode = ModeAwaitingProfileGender
		return Reply{Text: "What's your gender?", Options: genderOptions}

	case ModeAwaitingProfileGender:
		for _, g := range genderOptions {
			if value == g {
				sess.Draft.Gender = g
				sess.Mode = ModeAwaitingProfileWeight
				return Reply{Text: "What's your weight in kg? (e.g. 72.5)"}
			}
		}
		return Reply{Text: "Please pick one of the options.", Options: genderOptions}

	case ModeAwaitingProfileWeight:
		w, err := parseDecimal(value)
		if err != nil || w <= 0 {
			return Reply{Text: "Please send your weight in kg, like 72.5 or 72,5."}
		}
		sess.Draft.Weight = w
		sess.Mode = ModeAwaitingProfileHeight
		return Reply{Text: "And your height in cm? (e.g. 178)"}

	case ModeAwaitingProfileHeight:
		h, err := parseDecimal(value)
		if err != nil || h <= 0 {
			return Reply{Text: "Please send your height in cm, like 178 or 178,5."}
		}
		sess.Draft.Height = h
		sess.Mode = ModeAwaitingProfileActivity
		return Reply{Text: "How active are you?", Options: ActivityLevels()}

	case ModeAwaitingProfileActivity:
		matched := false
		for _, a := range ActivityLevels() {
			if value == a {
				matched = true
				break
			}
		}
		if !matched {
			return Reply{Text: "Please pick one of the options.", Options: ActivityLevels()}
		}
		return c.finishProfile(ctx, sess, userID, value)
	}

	return Reply{Text: "We're not in goal setup right now. Use the menu to start it."}
}

// finishProfile computes the goal (oracle first, deterministic fallback) and
// persists the profile. Either way the flow ends in Idle.
func (c *ConversationService) finishProfile(ctx context.Context, sess *Session, userID, activity string) Reply {
	d := sess.Draft

	goal, err := c.oracle.ComputeGoals(ctx, d.Age, d.Gender, d.Weight, d.Height, activity)
	if err != nil {
		c.logger.Warn().Err(err).Str("user", userID).Msg("oracle goal calc failed, using formula")
		goal = CalculateDailyGoals(d.Age, d.Gender, d.Weight, d.Height, activity)
	}

	if err := c.logs.SaveProfile(userID, d.Age, d.Gender, d.Weight, d.Height, activity, goal.Calories); err != nil {
		c.logger.Error().Err(err).Str("user", userID).Msg("profile save failed")
		return Reply{Text: "I computed your goal but couldn't save it. Pick your activity level again.", Options: ActivityLevels()}
	}

	c.resetToIdle(sess)
	c.mirror.SyncUser(userID)

	return Reply{Text: fmt.Sprintf(
		"🎯 Your daily goal: %d kcal\n💪 Protein: %dg | 🍞 Carbs: %dg | 🥑 Fats: %dg\n\n%s",
		goal.Calories, goal.Protein, goal.Carbs, goal.Fats, goal.Explanation)}
}

func (c *ConversationService) manualGoalAnswer(sess *Session, userID, text string) Reply {
	goal, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || goal <= 0 {
		return Reply{Text: "Please send the goal as a whole number of kcal, like 2200."}
	}
	if err := c.SetManualGoal(userID, goal); err != nil {
		return Reply{Text: "I couldn't save that goal. Please try again."}
	}
	c.resetToIdle(sess)
	return Reply{Text: fmt.Sprintf("Done! Your daily goal is now %d kcal.", goal)}
}

// SetManualGoal sets the calorie goal directly (dashboard or inline event).
func (c *ConversationService) SetManualGoal(userID string, goal int) error {
	if goal <= 0 {
		return fmt.Errorf("%w: goal must be positive", ErrValidation)
	}
	if _, err := c.logs.EnsureUser(userID, ""); err != nil {
		return err
	}
	if err := c.logs.SetCalorieGoal(userID, goal); err != nil {
		return err
	}
	c.mirror.SyncUser(userID)
	return nil
}

// ToggleDetails rebuilds the requested view from storage alone: the show or
// hide instruction rides on the event, so no message state is kept here.
func (c *ConversationService) ToggleDetails(userID, key string, show bool) Reply {
	var (
		view JournalView
		err  error
	)
	if key == "" || key == "today" {
		view, err = c.journal.BuildDay(userID, c.now(), show)
	} else {
		view, err = c.journal.BuildGroup(key, show)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("user", userID).Msg("journal build failed")
		return Reply{Text: "I couldn't load that view right now."}
	}
	return Reply{Text: view.Text, Journal: &view}
}

// DeleteItem removes one row and mirrors the new totals.
func (c *ConversationService) DeleteItem(userID string, itemID uint) Reply {
	if err := c.logs.DeleteItem(itemID); err != nil {
		c.logger.Error().Err(err).Str("user", userID).Msg("item delete failed")
		return Reply{Text: "I couldn't delete that entry."}
	}
	c.mirror.SyncUser(userID)
	return Reply{Text: "Entry deleted. 🗑️"}
}

// ClearToday wipes the user's current day and mirrors the empty state.
func (c *ConversationService) ClearToday(userID string) Reply {
	if err := c.logs.ClearToday(userID, c.now()); err != nil {
		c.logger.Error().Err(err).Str("user", userID).Msg("clear today failed")
		return Reply{Text: "I couldn't clear today's log."}
	}
	c.mirror.SyncUser(userID)
	return Reply{Text: "Today's log is cleared. Fresh start! ✨"}
}

// parseDecimal accepts comma or dot decimals.
func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}
