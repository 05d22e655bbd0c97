/*
Package dom loads HTML documents and resolves selectors against them.

# Overview

A fetched page is parsed exactly once into a shared node tree. The same
tree backs both CSS selection (goquery) and XPath selection (htmlquery),
so explicit table selectors can use either syntax without a second parse.

# Features

- Automatic charset detection with UTF-8 conversion
- Size validation to prevent memory exhaustion
- Optional sanitization of untrusted markup
- CSS and XPath selection over one parsed tree

# Usage

	loader := dom.NewLoader()
	doc, err := loader.Load(htmlStr)
	if err != nil {
		return err
	}

	tables := doc.Find("table.wikitable")
	rows, err := doc.Select("//table[@id='data']//tr")
*/
package dom
