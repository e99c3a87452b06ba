package warehouse

import (
	"encoding/json"
	"fmt"
	"math"

	domainWarehouse "warehouse-manager/internal/domain/warehouse"
	appErrors "warehouse-manager/pkg/errors"
)

// BuildArea converts the request geometry. Manual footprints need both sides
// and get their area computed when the client left it out; map footprints need
// a GeoJSON object.
func BuildArea(req *AreaRequest) (*domainWarehouse.AreaGeometry, error) {
	if req == nil {
		return nil, nil
	}

	area := &domainWarehouse.AreaGeometry{
		Method:           req.Method,
		WidthM:           req.WidthM,
		LengthM:          req.LengthM,
		CalculatedAreaM2: req.CalculatedAreaM2,
	}

	switch req.Method {
	case domainWarehouse.AreaMethodManual:
		if req.WidthM == nil || req.LengthM == nil {
			return nil, invalid(fmt.Errorf("%w: manual area needs width_m and length_m", domainWarehouse.ErrInvalidArea))
		}
		if area.CalculatedAreaM2 == nil {
			computed := math.Round(*req.WidthM**req.LengthM*100) / 100
			area.CalculatedAreaM2 = &computed
		}
	case domainWarehouse.AreaMethodMap:
		var feature map[string]any
		if len(req.GeoJSON) == 0 || json.Unmarshal(req.GeoJSON, &feature) != nil || feature == nil {
			return nil, invalid(fmt.Errorf("%w: map area needs a geojson_data object", domainWarehouse.ErrInvalidArea))
		}
		area.GeoJSON = req.GeoJSON
	}

	return area, nil
}

// ValidateWarehouse runs the entity rules on a complete (created or merged) record.
func ValidateWarehouse(w *domainWarehouse.Warehouse) error {
	if err := w.Validate(); err != nil {
		return invalid(err)
	}
	return nil
}

// invalid keeps both the domain cause and ErrInvalidInput in the chain.
func invalid(err error) error {
	return appErrors.NewAppError(appErrors.CodeValidation, err.Error(), fmt.Errorf("%w: %w", appErrors.ErrInvalidInput, err))
}
