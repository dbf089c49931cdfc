package generator

import (
	"fmt"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// promptTemplate mirrors the original PromptTemplate's field set:
// age, profession, interests, name, category, description.
const promptTemplate = `Sei un assistente che scrive brevi messaggi pubblicitari geolocalizzati.
Utente: %d anni, professione: %s, interessi: %s.
Punto di interesse: %s (%s) - %s.
Scrivi un messaggio breve, personalizzato e invitante in italiano, massimo due frasi.`

// renderPrompt fills the template with a (user, poi) pair.
func renderPrompt(user models.GenerateUserInput, poi models.GeneratePOIInput) string {
	return fmt.Sprintf(promptTemplate,
		user.Age, user.Profession, user.Interests,
		poi.Name, poi.Category, poi.Description,
	)
}
