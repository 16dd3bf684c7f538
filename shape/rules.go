// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shape

import (
	"strings"

	"m4o.io/osmdoc/model"
	"m4o.io/osmdoc/rules"
)

// Rule is one step of the tag cascade. Rules are tried in order and the first
// whose Match reports true is the only one applied to a tag.
type Rule struct {
	Name  string
	Match func(tag model.Tag) bool
	Apply func(doc model.Document, tag model.Tag)
}

// Rule names, in cascade order.
const (
	RuleProblemKey      = "problem-key"
	RuleStreetQualifier = "street-qualifier"
	RuleAddress         = "address"
	RuleSecondaryType   = "secondary-type"
	RulePostcode        = "postcode"
	RuleSemicolonList   = "semicolon-list"
	RuleCommaList       = "comma-list"
	RuleVerbatim        = "verbatim"
)

// Rules returns the tag cascade for the given tables.
func Rules(t rules.Tables) []Rule {
	return []Rule{
		{
			Name:  RuleProblemKey,
			Match: func(tag model.Tag) bool { return t.HasProblemChars(tag.Key) },
			Apply: drop,
		},
		{
			Name:  RuleStreetQualifier,
			Match: func(tag model.Tag) bool { return strings.HasPrefix(tag.Key, rules.StreetQualifierPrefix) },
			Apply: drop,
		},
		{
			Name:  RuleAddress,
			Match: func(tag model.Tag) bool { return strings.HasPrefix(tag.Key, rules.AddressPrefix) },
			Apply: func(doc model.Document, tag model.Tag) {
				suffix := strings.TrimPrefix(tag.Key, rules.AddressPrefix)

				value := tag.Value
				if suffix == rules.StreetSuffix {
					value = t.NormalizeStreet(value)
				}

				doc.Sub(model.KeyAddress)[suffix] = value
			},
		},
		{
			Name:  RuleSecondaryType,
			Match: func(tag model.Tag) bool { return tag.Key == rules.SecondaryTypeKey },
			Apply: func(doc model.Document, tag model.Tag) {
				doc[model.KeyTypeSecondary] = tag.Value
			},
		},
		{
			Name: RulePostcode,
			Match: func(tag model.Tag) bool {
				_, ok := t.TrimPostcode(tag.Value)

				return ok
			},
			Apply: func(doc model.Document, tag model.Tag) {
				code, _ := t.TrimPostcode(tag.Value)
				doc[flattenKey(tag.Key)] = code
			},
		},
		splitOn(RuleSemicolonList, rules.SemicolonDelimiter),
		splitOn(RuleCommaList, rules.CommaDelimiter),
		{
			Name:  RuleVerbatim,
			Match: func(model.Tag) bool { return true },
			Apply: func(doc model.Document, tag model.Tag) {
				doc[flattenKey(tag.Key)] = tag.Value
			},
		},
	}
}

// splitOn stores the value split on delim. The parts are not split again.
func splitOn(name, delim string) Rule {
	return Rule{
		Name:  name,
		Match: func(tag model.Tag) bool { return strings.Contains(tag.Value, delim) },
		Apply: func(doc model.Document, tag model.Tag) {
			doc[flattenKey(tag.Key)] = strings.Split(tag.Value, delim)
		},
	}
}

func drop(model.Document, model.Tag) {}

// flattenKey rewrites namespace separators so that "name:en" becomes
// "name_en".
func flattenKey(key string) string {
	return strings.ReplaceAll(key, rules.NamespaceSeparator, rules.KeySeparator)
}
