// Command doccrawl renders every URL in a links file with a headless browser
// and saves the pages as one markdown document.
package main

func main() {
	Execute()
}
