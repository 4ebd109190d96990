package improvement

import (
	"strings"

	"github.com/okian/teacheval/internal/domain/model"
)

// GenericRecommendation applies to categories without a rule.
const GenericRecommendation = "Revise y fortalezca las competencias relacionadas con este aspecto mediante capacitación y reflexión sobre su práctica docente."

// Keyword maps a case-insensitive fragment of a question text to a recommendation.
type Keyword struct {
	Fragment string
	Text     string
}

// Rule holds the recommendations of one category. Keywords are tried in order.
type Rule struct {
	Default  string
	Keywords []Keyword
}

// RuleSet resolves recommendation text by category and question text.
type RuleSet struct {
	rules    map[model.Category]Rule
	fallback string
}

// NewRuleSet builds a RuleSet; an empty fallback uses GenericRecommendation.
func NewRuleSet(rules map[model.Category]Rule, fallback string) RuleSet {
	if fallback == "" {
		fallback = GenericRecommendation
	}
	copied := make(map[model.Category]Rule, len(rules))
	for c, r := range rules {
		kw := make([]Keyword, len(r.Keywords))
		for i, k := range r.Keywords {
			kw[i] = Keyword{Fragment: strings.ToLower(k.Fragment), Text: k.Text}
		}
		copied[c] = Rule{Default: r.Default, Keywords: kw}
	}
	return RuleSet{rules: copied, fallback: fallback}
}

// Resolve returns the first keyword match within the category's rule, the
// category default when nothing matches, or the fallback when the category
// has no rule.
func (rs RuleSet) Resolve(c model.Category, questionText string) string {
	rule, ok := rs.rules[c]
	if !ok {
		return rs.fallback
	}
	text := strings.ToLower(questionText)
	for _, k := range rule.Keywords {
		if strings.Contains(text, k.Fragment) {
			return k.Text
		}
	}
	return rule.Default
}

// DefaultRules returns the built-in rule table.
func DefaultRules() RuleSet {
	return NewRuleSet(map[model.Category]Rule{
		model.Planning: {
			Default: "Revise y actualice la planificación de sus clases con objetivos claros, metodologías apropiadas y criterios de evaluación alineados con las competencias del módulo.",
			Keywords: []Keyword{
				{"conocimientos actualizados", "Actualice sus conocimientos con capacitaciones, literatura reciente y participación en comunidades académicas de su disciplina."},
				{"programa", "Socialice el programa del módulo al inicio del periodo: objetivos, contenidos, metodología y criterios de evaluación."},
				{"plan", "Elabore un plan de trabajo detallado y coherente con el programa y con las necesidades de aprendizaje del grupo."},
			},
		},
		model.TeachingDelivery: {
			Default: "Implemente metodologías activas que promuevan la participación, el pensamiento crítico y la aplicación práctica del conocimiento.",
			Keywords: []Keyword{
				{"proyectos de aula", "Diseñe proyectos de aula que conecten la teoría con situaciones reales y estimulen la investigación."},
				{"recursos", "Incorpore recursos didácticos diversos (TIC, material audiovisual, laboratorios) para enriquecer el aprendizaje."},
				{"metodología", "Diversifique las estrategias metodológicas para atender distintos estilos de aprendizaje."},
				{"tecnología", "Integre herramientas tecnológicas como el aula virtual, aplicaciones y simuladores en sus clases."},
			},
		},
		model.LearningAssessment: {
			Default: "Diseñe evaluaciones variadas que midan las competencias de forma integral y acompáñelas de retroalimentación oportuna.",
			Keywords: []Keyword{
				{"métodos", "Aplique distintos métodos de evaluación (escritos, orales, prácticos, proyectos) según la competencia a valorar."},
				{"retroalimentación", "Entregue retroalimentación clara, específica y oportuna que oriente la mejora del aprendizaje."},
				{"coherente", "Alinee las evaluaciones con los objetivos de aprendizaje y con las actividades realizadas en clase."},
				{"criterios", "Defina y comunique los criterios de evaluación antes de cada actividad evaluativa."},
			},
		},
		model.PersonalComponent: {
			Default: "Fortalezca las relaciones interpersonales en el aula con respeto, empatía y comunicación efectiva.",
			Keywords: []Keyword{
				{"respeto", "Mantenga una actitud de respeto y tolerancia hacia la diversidad de ideas y características de los estudiantes."},
				{"disciplina", "Establezca normas claras de convivencia y un ambiente de aprendizaje ordenado."},
				{"comunicación", "Desarrolle escucha activa y comunicación asertiva para mejorar la interacción con los estudiantes."},
				{"puntualidad", "Cumpla puntualmente horarios y compromisos académicos."},
			},
		},
	}, GenericRecommendation)
}
