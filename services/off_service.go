package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// OFFService queries Open Food Facts for canonical per-100g product records.
type OFFService struct {
	baseURL string
	client  *http.Client
}

func NewOFFService() *OFFService {
	return &OFFService{
		baseURL: "https://world.openfoodfacts.org",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewOFFServiceWithBase points the client at a different host (tests).
func NewOFFServiceWithBase(baseURL string) *OFFService {
	s := NewOFFService()
	s.baseURL = baseURL
	return s
}

type offNutriments struct {
	EnergyKcal100g float64 `json:"energy-kcal_100g"`
	Proteins100g   float64 `json:"proteins_100g"`
	Carbs100g      float64 `json:"carbohydrates_100g"`
	Fat100g        float64 `json:"fat_100g"`
}

type offProduct struct {
	ProductName string        `json:"product_name"`
	Nutriments  offNutriments `json:"nutriments"`
}

func toProductRecord(p offProduct) *ProductRecord {
	name := p.ProductName
	if name == "" {
		name = "Unknown"
	}
	return &ProductRecord{
		Name:     name,
		Calories: p.Nutriments.EnergyKcal100g,
		Protein:  p.Nutriments.Proteins100g,
		Carbs:    p.Nutriments.Carbs100g,
		Fats:     p.Nutriments.Fat100g,
		Unit:     "100g",
	}
}

// LookupBarcode fetches a product by barcode. ErrNotFound when OFF has no
// entry for the code.
func (s *OFFService) LookupBarcode(code string) (*ProductRecord, error) {
	u := fmt.Sprintf("%s/api/v0/product/%s.json", s.baseURL, url.PathEscape(code))

	resp, err := s.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("%w: call OFF product API: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read OFF response: %v", ErrProvider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: OFF product API error %d", ErrProvider, resp.StatusCode)
	}

	var pr struct {
		Status  int        `json:"status"`
		Product offProduct `json:"product"`
	}
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("%w: parse OFF product JSON: %v", ErrProvider, err)
	}
	if pr.Status != 1 {
		return nil, fmt.Errorf("%w: barcode %s", ErrNotFound, code)
	}
	return toProductRecord(pr.Product), nil
}

// SearchProduct looks up the best free-text match. ErrNotFound when the
// search returns no products.
func (s *OFFService) SearchProduct(query string) (*ProductRecord, error) {
	q := url.Values{}
	q.Set("search_terms", query)
	q.Set("search_simple", "1")
	q.Set("action", "process")
	q.Set("json", "1")
	q.Set("page_size", "1")
	u := fmt.Sprintf("%s/cgi/search.pl?%s", s.baseURL, q.Encode())

	resp, err := s.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("%w: call OFF search API: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read OFF search response: %v", ErrProvider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: OFF search API error %d", ErrProvider, resp.StatusCode)
	}

	var sr struct {
		Products []offProduct `json:"products"`
	}
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: parse OFF search JSON: %v", ErrProvider, err)
	}
	if len(sr.Products) == 0 {
		return nil, fmt.Errorf("%w: product %q", ErrNotFound, query)
	}
	return toProductRecord(sr.Products[0]), nil
}
