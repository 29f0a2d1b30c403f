package dispatch

import (
	"fmt"

	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
)

type defaultBrdf struct {
	sample BrdfSampleFunc
	eval   BrdfEvalFunc
	pdf    BrdfPdfFunc
}

var defaultBrdfs = map[scene.BrdfType]defaultBrdf{
	scene.Lambert:              {lambertSample, lambertEval, lambertPdf},
	scene.Phong:                {phongSample, phongEval, phongPdf},
	scene.MicrofacetReflection: {microfacetSample, microfacetEval, microfacetPdf},
}

var defaultLights = map[scene.LightType]LightSampleFunc{
	scene.SphereLight:      sphereSample,
	scene.QuadLight:        quadSample,
	scene.DirectionalLight: directionalSample,
}

// RegisterDefaults creates programs for the built-in BRDF and light
// callables and registers them with reg.
func RegisterDefaults(reg *Registry, dev *device.Device) error {
	for brdf := scene.BrdfType(0); brdf < scene.NumBrdfTypes; brdf++ {
		fns, exists := defaultBrdfs[brdf]
		if !exists {
			continue
		}

		callables := []struct {
			role Role
			name string
			fn   interface{}
		}{
			{BrdfSample, "sample", fns.sample},
			{BrdfEval, "eval", fns.eval},
			{BrdfPdf, "pdf", fns.pdf},
		}
		for _, c := range callables {
			if err := register(reg, dev, c.role, int(brdf), fmt.Sprintf("%s_%s", brdf, c.name), c.fn); err != nil {
				return err
			}
		}
	}

	for lightType := scene.LightType(0); lightType < scene.NumLightTypes; lightType++ {
		fn, exists := defaultLights[lightType]
		if !exists {
			continue
		}
		if err := register(reg, dev, LightSample, int(lightType), fmt.Sprintf("%s_sample", lightType), fn); err != nil {
			return err
		}
	}

	return nil
}

func register(reg *Registry, dev *device.Device, role Role, ordinal int, name string, fn interface{}) error {
	id, err := dev.CreateProgram(name, fn)
	if err != nil {
		return fmt.Errorf("dispatch registry: %w", err)
	}
	return reg.Register(role, ordinal, id)
}
