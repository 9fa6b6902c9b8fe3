package criteria

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/programme-lv/schein/points"
)

// SheetTotal passes when the points over all sheets reach ValueNeeded,
// either absolute or as a ratio of the required (non-bonus) points.
type SheetTotal struct {
	Percentage  bool    `json:"percentage"`
	ValueNeeded float64 `json:"valueNeeded" validate:"gte=0"`
}

func (SheetTotal) Kind() Kind { return KindSheetTotal }

func sheetTotalStructValidation(sl validator.StructLevel) {
	c := sl.Current().Interface().(SheetTotal)
	reportPercentage(sl, c.Percentage, c.ValueNeeded, "valueNeeded", "ValueNeeded")
}

func (c SheetTotal) Evaluate(in Input) (Status, error) {
	if !validNumber(c.ValueNeeded) {
		return Status{}, fmt.Errorf("%w: sheettotal valueNeeded %v", ErrInvalidConfig, c.ValueNeeded)
	}

	achieved, total := 0.0, 0.0
	infos := make(map[string]StatusInfo, len(in.Sheets))
	for _, sheet := range in.Sheets {
		got := in.Points.SumOfPoints(sheet)
		required := points.SheetTotalRequiredPoints(sheet)

		achieved += got
		if !sheet.Bonus {
			total += required
		}
		infos[sheet.ID] = StatusInfo{
			No:       sheet.SheetNo,
			Achieved: got,
			Total:    required,
			State:    StateIgnore,
		}
	}

	passed := achieved >= c.ValueNeeded
	if c.Percentage {
		passed = meetsRatio(achieved, total, c.ValueNeeded)
	}

	return Status{
		Identifier: KindSheetTotal,
		Passed:     passed,
		Achieved:   achieved,
		Total:      total,
		Unit:       UnitPoint,
		Infos:      infos,
	}, nil
}

// SheetIndividual counts sheets on which the per sheet threshold was met.
// Bonus sheets may add passed sheets but do not raise the number required.
type SheetIndividual struct {
	Percentage          bool    `json:"percentage"`
	ValueNeeded         float64 `json:"valueNeeded" validate:"gte=0"`
	PercentagePerSheet  bool    `json:"percentagePerSheet"`
	ValuePerSheetNeeded float64 `json:"valuePerSheetNeeded" validate:"gte=0"`
}

func (SheetIndividual) Kind() Kind { return KindSheetIndividual }

func sheetIndividualStructValidation(sl validator.StructLevel) {
	c := sl.Current().Interface().(SheetIndividual)
	reportPercentage(sl, c.Percentage, c.ValueNeeded, "valueNeeded", "ValueNeeded")
	reportPercentage(sl, c.PercentagePerSheet, c.ValuePerSheetNeeded, "valuePerSheetNeeded", "ValuePerSheetNeeded")
}

func (c SheetIndividual) sheetPassed(achieved, required float64) bool {
	if c.PercentagePerSheet {
		return meetsRatio(achieved, required, c.ValuePerSheetNeeded)
	}
	return achieved >= c.ValuePerSheetNeeded
}

func (c SheetIndividual) Evaluate(in Input) (Status, error) {
	if !validNumber(c.ValueNeeded) || !validNumber(c.ValuePerSheetNeeded) {
		return Status{}, fmt.Errorf("%w: sheetindividual thresholds %v/%v",
			ErrInvalidConfig, c.ValueNeeded, c.ValuePerSheetNeeded)
	}

	regular := 0
	passedSheets := 0
	infos := make(map[string]StatusInfo, len(in.Sheets))
	for _, sheet := range in.Sheets {
		got := in.Points.SumOfPoints(sheet)
		required := points.SheetTotalRequiredPoints(sheet)
		ok := c.sheetPassed(got, required)

		if !sheet.Bonus {
			regular++
		}
		if ok {
			passedSheets++
		}
		infos[sheet.ID] = StatusInfo{
			No:       sheet.SheetNo,
			Achieved: got,
			Total:    required,
			State:    stateOf(ok),
		}
	}

	needed := requiredCount(c.Percentage, c.ValueNeeded, regular)
	return Status{
		Identifier: KindSheetIndividual,
		Passed:     float64(passedSheets) >= needed,
		Achieved:   float64(passedSheets),
		Total:      needed,
		Unit:       UnitSheet,
		Infos:      infos,
	}, nil
}
