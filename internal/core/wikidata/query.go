package wikidata

import (
	"fmt"
	"strings"
)

// 食材關係：P186 製作材料、P4330 包含、P527 組成部分
var ingredientRelations = []string{"P186", "P4330", "P527"}

const queryHeader = `prefix wdt: <http://www.wikidata.org/prop/direct/>
prefix wd: <http://www.wikidata.org/entity/>
prefix bd: <http://www.bigdata.com/rdf#>
prefix wikibase: <http://wikiba.se/ontology#>

SELECT DISTINCT ?cocktail ?imageUrl ?cocktailLabel ?ingredientLabel ?offCategory ?alcohol ?ingredientAmount ?ingredientUnitLabel
WHERE {
  ?cocktail wdt:P31?/wdt:P279* wd:Q134768.
  FILTER NOT EXISTS { ?cocktail wdt:P31 wd:Q16889133. }

  OPTIONAL { ?cocktail wdt:P18 ?imageUrl. }

  ?cocktail rdfs:label ?cocktailLabel.
  FILTER (lang(?cocktailLabel) = "en").
`

const relationBlock = `
  OPTIONAL {
    ?cocktail p:%[1]s ?ingredientStatement.
    ?ingredientStatement ps:%[1]s ?ingredient;
                         pqv:P1114/wikibase:quantityAmount ?ingredientAmount;
                         pqv:P1114/wikibase:quantityUnit ?ingredientUnit.

    ?ingredient rdfs:label ?ingredientLabel.
    FILTER (lang(?ingredientLabel) = "en").
    ?ingredientUnit rdfs:label ?ingredientUnitLabel.
    FILTER (lang(?ingredientUnitLabel) = "en").

    OPTIONAL { ?ingredient wdt:P2665 ?ingredientAlcohol. }
    OPTIONAL { ?ingredient wdt:P31/wdt:P2665 ?ingredientClassAlcohol. }
    OPTIONAL { ?ingredient wdt:P279/wdt:P2665 ?ingredientSuperclassAlcohol. }
    BIND(COALESCE(?ingredientAlcohol, ?ingredientClassAlcohol, ?ingredientSuperclassAlcohol) AS ?alcohol).

    OPTIONAL { ?ingredient wdt:P1821 ?ingredientOffCategory. }
    OPTIONAL { ?ingredient wdt:P31/wdt:P1821 ?ingredientClassOffCategory. }
    OPTIONAL { ?ingredient wdt:P279/wdt:P1821 ?ingredientSuperclassOffCategory. }
    BIND(COALESCE(?ingredientOffCategory, ?ingredientClassOffCategory, ?ingredientSuperclassOffCategory) AS ?offCategory).

    FILTER (!CONTAINS(IF(BOUND(?offCategory), ?offCategory, ""), ":"))
  }
`

const queryFooter = `}
ORDER BY ASC(?cocktailLabel)
`

// DrinkQuery 查詢所有雞尾酒與其食材用量的 SPARQL
func DrinkQuery() string {
	var b strings.Builder
	b.WriteString(queryHeader)
	for _, rel := range ingredientRelations {
		fmt.Fprintf(&b, relationBlock, rel)
	}
	b.WriteString(queryFooter)
	return b.String()
}
