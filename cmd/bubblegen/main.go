// Command bubblegen renders message images and serves the posting API.
//
// Usage:
//
//	bubblegen render --text "Hello world" --post-id MSG001 --time "12:00 PM" -o post.png
//	bubblegen samples -o out/
//	bubblegen serve --config bubble.yml
package main

func main() {
	Execute()
}
