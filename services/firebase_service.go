package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// FirebaseService mirrors per-user snapshots into Firestore via its REST
// surface, one document per user at users/{user_id}. It is only ever called
// through the sync dispatcher, so every failure here is invisible to users.
type FirebaseService struct {
	client       *resty.Client
	documentsURL string // .../databases/(default)/documents
}

func NewFirebaseService(documentsURL, bearerToken string) *FirebaseService {
	c := resty.New().
		SetTimeout(10 * time.Second).
		SetAuthToken(bearerToken)
	return &FirebaseService{client: c, documentsURL: documentsURL}
}

// Firestore's REST API wants typed field values.
func fsString(s string) map[string]interface{}  { return map[string]interface{}{"stringValue": s} }
func fsInt(i int) map[string]interface{}        { return map[string]interface{}{"integerValue": strconv.Itoa(i)} }
func fsDouble(f float64) map[string]interface{} { return map[string]interface{}{"doubleValue": f} }
func fsTime(t time.Time) map[string]interface{} {
	return map[string]interface{}{"timestampValue": t.UTC().Format(time.RFC3339)}
}

func fsMap(fields map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"mapValue": map[string]interface{}{"fields": fields}}
}

func fsArray(values []interface{}) map[string]interface{} {
	return map[string]interface{}{"arrayValue": map[string]interface{}{"values": values}}
}

func (f *FirebaseService) Publish(ctx context.Context, snap SyncSnapshot) error {
	logs := make([]interface{}, 0, len(snap.Logs))
	for _, l := range snap.Logs {
		entry := map[string]interface{}{
			"name":   fsString(l.Name),
			"cals":   fsInt(l.Cals),
			"prot":   fsDouble(l.Prot),
			"carbs":  fsDouble(l.Carbs),
			"fats":   fsDouble(l.Fats),
			"period": fsString(l.Period),
		}
		if l.Score != nil {
			entry["score"] = fsInt(*l.Score)
		}
		logs = append(logs, fsMap(entry))
	}

	doc := map[string]interface{}{
		"fields": map[string]interface{}{
			"total_cals": fsInt(snap.TotalCals),
			"goal_cals":  fsInt(snap.GoalCals),
			"macros": fsMap(map[string]interface{}{
				"protein": fsDouble(snap.Protein),
				"carbs":   fsDouble(snap.Carbs),
				"fats":    fsDouble(snap.Fats),
			}),
			"logs":         fsArray(logs),
			"last_updated": fsTime(snap.UpdatedAt),
		},
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetBody(doc).
		Patch(fmt.Sprintf("%s/users/%s", f.documentsURL, snap.UserID))
	if err != nil {
		return fmt.Errorf("firestore patch: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("firestore patch: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
