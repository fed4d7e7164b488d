package services

import (
	"context"
	"fmt"
)

// FallbackOracle stands in when no OpenAI key is configured. Images go
// through Rekognition label detection chained into a product search; text is
// treated as a straight product query; goals always use the deterministic
// calculator. Estimates are per-100g, which is the best a label can give.
type FallbackOracle struct {
	rek *RekognitionService
	off *OFFService
}

func NewFallbackOracle(rek *RekognitionService, off *OFFService) *FallbackOracle {
	return &FallbackOracle{rek: rek, off: off}
}

func (o *FallbackOracle) productToItem(p *ProductRecord) OracleItem {
	return OracleItem{
		Item:     p.Name,
		Calories: p.Calories,
		Protein:  p.Protein,
		Carbs:    p.Carbs,
		Fats:     p.Fats,
		WeightG:  100,
	}
}

func (o *FallbackOracle) ExtractFromImage(ctx context.Context, image []byte, caption string) ([]OracleItem, string, error) {
	labels, err := o.rek.RecognizeLabels(ctx, image)
	if err != nil {
		return nil, "", err
	}
	if len(labels) == 0 {
		return nil, "I couldn't spot any food in that photo.", nil
	}

	product, err := o.off.SearchProduct(labels[0])
	if err != nil {
		// an unmatchable label is "no food detected", not a failure
		return nil, fmt.Sprintf("I think I see %s, but I couldn't find nutrition data for it.", labels[0]), nil
	}

	reply := fmt.Sprintf("Looks like %s. I logged it at a 100g serving: %.0f kcal.", product.Name, product.Calories)
	return []OracleItem{o.productToItem(product)}, reply, nil
}

func (o *FallbackOracle) ExtractFromText(ctx context.Context, text string) ([]OracleItem, string, error) {
	product, err := o.off.SearchProduct(text)
	if err != nil {
		return nil, "I couldn't find that food. Try a more specific product name.", nil
	}
	reply := fmt.Sprintf("Logged %s at a 100g serving: %.0f kcal.", product.Name, product.Calories)
	return []OracleItem{o.productToItem(product)}, reply, nil
}

func (o *FallbackOracle) ComputeGoals(ctx context.Context, age int, gender string, weight, height float64, activity string) (GoalResult, error) {
	return CalculateDailyGoals(age, gender, weight, height, activity), nil
}
