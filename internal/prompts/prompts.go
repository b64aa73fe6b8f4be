package prompts

import "fmt"

// transformTemplate instructs the image model to restyle the existing
// building at the submitted address instead of inventing a new one. The
// structure-preservation rules keep the generated image recognizable as the
// same location, which is what makes a civic vision convincing.
const transformTemplate = `Looking at this street view photograph of %s, create a photorealistic transformation where %s.

CRITICAL REQUIREMENTS:
- PRESERVE the EXACT same building structure, architecture, and proportions
- KEEP all architectural elements in their precise locations (windows, doors, rooflines, facades)
- MAINTAIN the exact perspective, viewing angle, and composition of the original photo
- PRESERVE the surrounding context and neighboring buildings
- The building must be instantly recognizable as the same location

TRANSFORMATIONS TO APPLY:
- Add new materials, textures, or surface treatments to existing structures
- Enhance or modify lighting, atmosphere, and environmental effects
- Add decorative elements, overlays, or augmentations that don't alter the core structure
- Transform the style while keeping the underlying architecture intact
- Think of it as applying a new skin or filter to the existing building, not rebuilding it

The result should look like the same exact building has been enhanced or restyled, not replaced or reconstructed.`

// BuildTransformPrompt renders the full image-generation prompt for a vision.
// Parameters:
//   - address: street address of the location being reimagined.
//   - visionText: the user's free-text civic vision.
// Returns:
//   - string: complete prompt for the image model.
func BuildTransformPrompt(address, visionText string) string {
	return fmt.Sprintf(transformTemplate, address, visionText)
}
